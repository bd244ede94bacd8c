package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/moodjournal/internal/client/history"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

const (
	shortIDLength  = 8
	previewLength  = 48
	ansiReset      = "\x1b[0m"
	ansiRGBPattern = "\x1b[38;2;%d;%d;%dm"
)

// shortID is the prefix shown in lists; commands accept it in place of the
// full id.
func shortID(e models.MoodEntry) string {
	if e.ID == "" {
		return "pending"
	}
	if len(e.ID) <= shortIDLength {
		return e.ID
	}
	return e.ID[:shortIDLength]
}

// preview flattens note to one line of at most n runes.
func preview(note string, n int) string {
	note = strings.Join(strings.Fields(note), " ")
	if utf8.RuneCountInString(note) <= n {
		return note
	}
	r := []rune(note)
	return string(r[:n-1]) + "…"
}

// paint wraps s in the 24-bit terminal color given as "#RRGGBB". Malformed
// colors leave s unchanged.
func paint(s, hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return s
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return s
	}
	return fmt.Sprintf(ansiRGBPattern, v>>16&0xff, v>>8&0xff, v&0xff) + s + ansiReset
}

func (a *App) moodLabel(e models.MoodEntry) string {
	if e.Mood == nil {
		return "   Unknown"
	}
	label := fmt.Sprintf("%s %-8s", e.Mood.Emoji, e.Mood.Emotion.Title())
	if a.color {
		return paint(label, e.Mood.Emotion.Color())
	}
	return label
}

// entryLine is one history row: time, mood, short id, note preview and
// markers for audio, insight and unsynced drafts.
func (a *App) entryLine(e models.MoodEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %8s  %s  [%s]", history.FormatTime(e.EntryDate.Time, a.location()), a.moodLabel(e), shortID(e))
	if note := preview(e.TextNote, previewLength); note != "" {
		b.WriteString("  " + note)
	}
	if e.AudioFile != nil {
		b.WriteString("  ♪")
	}
	if e.InsightStatus() == models.InsightSucceeded {
		b.WriteString("  ✦")
	}
	if !e.Synced {
		b.WriteString("  (not synced)")
	}
	return b.String()
}

// renderHistory prints entries grouped under day headings, newest day first.
func (a *App) renderHistory(entries []models.MoodEntry, filter models.Emotion) {
	filtered := history.FilterByEmotion(entries, filter)
	if len(filtered) == 0 {
		if filter != "" && filter != models.EmotionAll {
			a.printf("No %s entries.\n", filter)
			return
		}
		a.println("No entries yet. Use 'add' to record how you feel, or 'refresh' to load from the server.")
		return
	}

	for _, bucket := range history.GroupByDay(filtered, a.clock(), a.location()) {
		a.println(bucket.Title)
		for _, e := range bucket.Entries {
			a.println(a.entryLine(e))
		}
	}
}

// renderEntry prints every detail of one entry.
func (a *App) renderEntry(e models.MoodEntry) {
	loc := a.location()
	a.printf("ID:       %s\n", e.ID)
	a.printf("Date:     %s, %s\n", history.DayTitle(e.EntryDate.Time, a.clock().In(loc)), history.FormatTime(e.EntryDate.Time, loc))
	a.printf("Mood:    %s\n", a.moodLabel(e))
	if e.TextNote != "" {
		a.println("Note:")
		for _, line := range strings.Split(e.TextNote, "\n") {
			a.println("  " + line)
		}
	}
	if af := e.AudioFile; af != nil {
		name := af.OriginalFilename
		if name == "" {
			name = af.Filename
		}
		if af.Duration != nil {
			a.printf("Audio:    %s (%s)\n", name, formatDuration(*af.Duration))
		} else {
			a.printf("Audio:    %s\n", name)
		}
	}
	a.renderInsightStatus(e.InsightStatus(), e.AIInsight, e.AIErrorMessage)
	if !e.Synced {
		a.println("This entry has not been saved to the server yet.")
	}
}

func (a *App) renderInsightStatus(status models.InsightStatus, text, errMsg string) {
	switch status {
	case models.InsightSucceeded:
		a.println("Insight:")
		a.println("  " + text)
	case models.InsightFailed:
		if errMsg == "" {
			errMsg = "insight generation failed"
		}
		a.printf("Insight:  failed (%s). Use 'regenerate' to try again.\n", errMsg)
	default:
		a.println("Insight:  still being generated")
	}
}

// formatDuration renders seconds as m:ss.
func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
