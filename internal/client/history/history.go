// Package history turns the flat entry cache into the grouped, filtered views
// the history screen renders. Everything here is pure and deterministic for a
// given input and "now".
package history

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

const (
	TitleToday     = "Today"
	TitleYesterday = "Yesterday"

	dayLayout     = "Monday, January 2"
	dayYearLayout = "Monday, January 2, 2006"
	timeLayout    = "3:04 PM"
)

// Bucket is the set of entries sharing one calendar day.
type Bucket struct {
	Title   string
	Date    time.Time // midnight of the day, in the grouping location
	Entries []models.MoodEntry
}

// FilterByEmotion keeps entries tagged with emotion. models.EmotionAll (or
// "") keeps everything; entries without a mood only survive under all.
func FilterByEmotion(entries []models.MoodEntry, emotion models.Emotion) []models.MoodEntry {
	if emotion == models.EmotionAll || emotion == "" {
		return slices.Clone(entries)
	}
	out := make([]models.MoodEntry, 0, len(entries))
	for _, e := range entries {
		if got, ok := e.Emotion(); ok && got == emotion {
			out = append(out, e)
		}
	}
	return out
}

// GroupByDay buckets entries by the calendar day of EntryDate in loc.
// Buckets appear in the order their day is first met while scanning entries;
// entries inside a bucket are sorted newest first.
func GroupByDay(entries []models.MoodEntry, now time.Time, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	var buckets []Bucket
	index := make(map[string]int)
	for _, e := range entries {
		day := startOfDay(e.EntryDate.In(loc))
		key := day.Format(time.DateOnly)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Title: DayTitle(day, now), Date: day})
		}
		buckets[i].Entries = append(buckets[i].Entries, e)
	}

	for i := range buckets {
		slices.SortStableFunc(buckets[i].Entries, func(a, b models.MoodEntry) int {
			return b.EntryDate.Compare(a.EntryDate.Time)
		})
	}
	return buckets
}

// DayTitle labels day relative to now: "Today", "Yesterday", otherwise the
// long weekday form, with the year only when it differs from now's.
func DayTitle(day, now time.Time) string {
	day = startOfDay(day.In(now.Location()))
	today := startOfDay(now)
	switch {
	case day.Equal(today):
		return TitleToday
	case day.Equal(today.AddDate(0, 0, -1)):
		return TitleYesterday
	case day.Year() != now.Year():
		return day.Format(dayYearLayout)
	default:
		return day.Format(dayLayout)
	}
}

// FormatTime renders the time of day of a history row, e.g. "3:04 PM".
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timeLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
