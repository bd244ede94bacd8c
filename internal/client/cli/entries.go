package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

// resolveID expands a short id typed by the user to the full id of a cached
// entry. Unknown prefixes are passed through for the server to judge.
func (a *App) resolveID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", &models.ValidationError{Field: "id", Reason: "entry id is required"}
	}

	var matches []string
	for _, e := range a.store.Entries() {
		if e.ID == arg {
			return arg, nil
		}
		if e.ID != "" && strings.HasPrefix(e.ID, arg) {
			matches = append(matches, e.ID)
		}
	}

	switch len(matches) {
	case 0:
		return arg, nil
	case 1:
		return matches[0], nil
	default:
		return "", &models.ValidationError{Field: "id", Reason: fmt.Sprintf("%q matches %d entries, type more of the id", arg, len(matches))}
	}
}

func (a *App) idArg(args []string, usage string) (string, error) {
	if len(args) == 0 {
		return "", &models.ValidationError{Field: "id", Reason: "usage: " + usage}
	}
	return a.resolveID(args[0])
}

// Add records a new entry. It shows up in the history at once and is
// marked as not synced until the server confirms it.
func (a *App) Add(ctx context.Context) error {
	moodText, err := getSimpleText(a.reader, moodPrompt(), a.out)
	if err != nil {
		return err
	}
	mood, err := parseMood(moodText)
	if err != nil {
		return err
	}

	note, err := getMultiline(a.reader, "Add a note (optional)", a.out)
	if err != nil {
		return err
	}

	dateText, err := getSimpleText(a.reader, "When? ("+entryDateHelpFormat+", empty for now)", a.out)
	if err != nil {
		return err
	}
	date, err := parseEntryDate(dateText, a.clock(), a.location())
	if err != nil {
		return err
	}

	created, err := a.entryService.Create(ctx, models.NewEntry{
		Mood:      *mood,
		TextNote:  note,
		EntryDate: models.At(date),
	})
	if err != nil {
		return err
	}

	a.println("Saved.")
	a.println(a.entryLine(*created))
	return nil
}

// List prints the cached history, optionally filtered by emotion.
func (a *App) List(_ context.Context, args []string) error {
	filter := models.EmotionAll
	if len(args) > 0 {
		e, err := models.ParseEmotion(args[0])
		if err != nil {
			return err
		}
		filter = e
	}
	a.renderHistory(a.store.Entries(), filter)
	return nil
}

// Refresh reloads entries from the server, optionally limited to the last
// N days.
func (a *App) Refresh(ctx context.Context, args []string) error {
	var q models.EntryQuery
	if len(args) > 0 {
		days, err := parsePositive("days", args[0])
		if err != nil {
			return err
		}
		q.Days = models.IntPtr(days)
	}

	list, err := a.entryService.Refresh(ctx, q)
	if err != nil {
		return err
	}
	a.printf("Loaded %d of %d entries.\n", len(list.Entries), list.Pagination.Total)
	return nil
}

// Show prints one entry. When the server cannot be reached the cached copy
// is shown instead.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "show <id>")
	if err != nil {
		return err
	}

	e, err := a.entryService.Get(ctx, id)
	if err != nil {
		cached, ok := a.store.Entry(id)
		if !ok || !errors.Is(err, client.ErrUnavailable) {
			return err
		}
		a.println("Server unavailable, showing the copy saved on this device.")
		e = &cached
	}

	a.renderEntry(*e)
	return nil
}

// Edit prompts for new values; empty answers keep the current ones.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "edit <id>")
	if err != nil {
		return err
	}

	current, ok := a.store.Entry(id)
	if !ok {
		e, err := a.entryService.Get(ctx, id)
		if err != nil {
			return err
		}
		current = *e
	}
	a.println(a.entryLine(current))

	var patch models.EntryPatch

	moodText, err := getSimpleText(a.reader, moodPrompt()+" [empty to keep]", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(moodText) != "" {
		mood, err := parseMood(moodText)
		if err != nil {
			return err
		}
		patch.Mood = mood
	}

	noteText, err := getSimpleText(a.reader, "New note [empty to keep, '-' to clear]", a.out)
	if err != nil {
		return err
	}
	switch strings.TrimSpace(noteText) {
	case "":
	case "-":
		patch.TextNote = models.StringPtr("")
	default:
		patch.TextNote = models.StringPtr(noteText)
	}

	dateText, err := getSimpleText(a.reader, "New date ("+entryDateHelpFormat+") [empty to keep]", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(dateText) != "" {
		date, err := parseEntryDate(dateText, a.clock(), a.location())
		if err != nil {
			return err
		}
		ts := models.At(date)
		patch.EntryDate = &ts
	}

	if patch.IsRemoteEmpty() {
		a.println("Nothing to change.")
		return nil
	}

	updated, err := a.entryService.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	a.println("Updated.")
	a.println(a.entryLine(*updated))
	return nil
}

// Delete removes an entry after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "delete <id>")
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete entry %s? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") && !strings.EqualFold(strings.TrimSpace(answer), "yes") {
		a.println("Cancelled.")
		return nil
	}

	if err := a.entryService.Delete(ctx, id); err != nil {
		return err
	}
	a.println("Deleted.")
	return nil
}
