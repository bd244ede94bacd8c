package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

// Audio uploads a voice note and attaches it to an entry.
//
// Usage: audio <id> <path> [duration-seconds]
func (a *App) Audio(ctx context.Context, args []string) error {
	const usage = "audio <id> <path> [duration-seconds]"
	if len(args) < 2 {
		return &models.ValidationError{Field: "audio", Reason: "usage: " + usage}
	}
	id, err := a.resolveID(args[0])
	if err != nil {
		return err
	}

	up := models.AudioUpload{EntryID: id, Path: args[1]}
	if len(args) > 2 {
		d, err := strconv.ParseFloat(args[2], 64)
		if err != nil || d < 0 {
			return &models.ValidationError{Field: "duration", Reason: "duration must be a number of seconds"}
		}
		up.Duration = &d
	}

	af, err := a.entryService.AttachAudio(ctx, up)
	if err != nil {
		return err
	}
	name := af.OriginalFilename
	if name == "" {
		name = af.Filename
	}
	a.println("Attached", name)
	return nil
}

// RemoveAudio deletes the voice note of an entry.
func (a *App) RemoveAudio(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "rmaudio <id>")
	if err != nil {
		return err
	}
	if err := a.entryService.RemoveAudio(ctx, id); err != nil {
		return err
	}
	a.println("Audio removed.")
	return nil
}
