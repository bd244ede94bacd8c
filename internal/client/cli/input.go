package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password from the user's
// terminal without echo. A newline is printed after the read to keep the UI
// tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(prompt string, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetMultiline prints a prompt to w and reads multiple lines until an empty
// line is entered (i.e., the user presses Enter twice). The trailing newline
// on each line is trimmed and the collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

const (
	entryDateLayout     = "2006-01-02 15:04"
	entryDateHelpFormat = "YYYY-MM-DD or YYYY-MM-DD HH:MM"
)

// parseEntryDate reads a user-typed entry date in loc. Empty means now; a bare
// date keeps now's time of day.
func parseEntryDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if t, err := time.ParseInLocation(entryDateLayout, s, loc); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		n := now.In(loc)
		return time.Date(d.Year(), d.Month(), d.Day(), n.Hour(), n.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, &models.ValidationError{
		Field:  "entry_date",
		Reason: fmt.Sprintf("use the format %s", entryDateHelpFormat),
	}
}

// parseMood reads an emotion name. The "all" filter value is not a mood.
func parseMood(s string) (*models.Mood, error) {
	if strings.TrimSpace(s) == "" {
		return nil, &models.ValidationError{Field: "mood", Reason: "please select a mood"}
	}
	e, err := models.ParseEmotion(s)
	if err != nil {
		return nil, err
	}
	if e == models.EmotionAll {
		return nil, &models.ValidationError{Field: "mood", Reason: "please select a mood"}
	}
	return &models.Mood{Emoji: e.Emoji(), Emotion: e}, nil
}

// parsePositive reads a strictly positive integer argument.
func parsePositive(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, &models.ValidationError{Field: field, Reason: fmt.Sprintf("%s must be a positive number", field)}
	}
	return n, nil
}

func moodPrompt() string {
	names := make([]string, 0, len(models.Emotions()))
	for _, e := range models.Emotions() {
		names = append(names, string(e))
	}
	return "How are you feeling? (" + strings.Join(names, ", ") + ")"
}
