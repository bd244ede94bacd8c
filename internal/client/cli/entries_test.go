package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertInOrder(t *testing.T, text string, parts ...string) {
	t.Helper()
	pos := -1
	for _, p := range parts {
		i := strings.Index(text, p)
		require.GreaterOrEqual(t, i, 0, "%q not found in:\n%s", p, text)
		require.Greater(t, i, pos, "%q is out of order in:\n%s", p, text)
		pos = i
	}
}

func TestAdd_CreatesEntry(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	entries := &fakeEntries{createFn: func(in models.NewEntry) (*models.MoodEntry, error) {
		e := entry("abcdef123456", in.Mood.Emotion, in.EntryDate.Time, in.TextNote)
		return &e, nil
	}}
	a.entryService = entries

	stubAnswers(t, "happy", "2026-10-17 09:30")
	stubMultiline(t, "Slept well")

	require.NoError(t, a.Add(context.Background()))

	require.Len(t, entries.created, 1)
	got := entries.created[0]
	assert.Equal(t, models.Mood{Emoji: "😊", Emotion: models.EmotionHappy}, got.Mood)
	assert.Equal(t, "Slept well", got.TextNote)
	assert.True(t, got.EntryDate.Equal(time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)))
	assert.Empty(t, got.LocalID, "local id is assigned by the service")

	assert.Contains(t, out.String(), "Saved.")
	assert.Contains(t, out.String(), "[abcdef12]")
	assert.Contains(t, out.String(), "Slept well")
}

func TestAdd_EmptyDateMeansNow(t *testing.T) {
	a, _ := newTestApp(t)
	logIn(t, a)
	entries := &fakeEntries{createFn: func(in models.NewEntry) (*models.MoodEntry, error) {
		e := entry("x1", in.Mood.Emotion, in.EntryDate.Time, "")
		return &e, nil
	}}
	a.entryService = entries

	stubAnswers(t, "neutral", "")
	stubMultiline(t, "")

	require.NoError(t, a.Add(context.Background()))
	require.Len(t, entries.created, 1)
	assert.True(t, entries.created[0].EntryDate.Equal(testNow))
}

func TestAdd_RejectsUnknownMood(t *testing.T) {
	a, _ := newTestApp(t)
	logIn(t, a)
	entries := &fakeEntries{}
	a.entryService = entries

	stubAnswers(t, "ecstatic")
	stubMultiline(t, "")

	err := a.Add(context.Background())
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, entries.created)
}

func TestAdd_RejectsBadDate(t *testing.T) {
	a, _ := newTestApp(t)
	logIn(t, a)
	entries := &fakeEntries{}
	a.entryService = entries

	stubAnswers(t, "sad", "last tuesday")
	stubMultiline(t, "")

	require.ErrorIs(t, a.Add(context.Background()), models.ErrValidation)
	assert.Empty(t, entries.created)
}

func TestList_GroupsByDayNewestFirst(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	seed(t, a,
		entry("e1", models.EmotionHappy, time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC), "Morning run"),
		entry("e2", models.EmotionSad, time.Date(2026, 10, 17, 13, 30, 0, 0, time.UTC), ""),
		entry("e3", models.EmotionNeutral, time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC), ""),
		entry("e4", models.EmotionAngry, time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC), ""),
	)

	require.NoError(t, a.List(context.Background(), nil))

	assertInOrder(t, out.String(),
		"Today", "1:30 PM", "[e2]", "10:00 AM", "[e1]", "Morning run",
		"Yesterday", "[e3]",
		"Wednesday, October 14", "[e4]",
	)
	assert.NotContains(t, out.String(), "not synced")
}

func TestList_FilterByEmotion(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	seed(t, a,
		entry("e1", models.EmotionHappy, testNow.Add(-time.Hour), ""),
		entry("e2", models.EmotionSad, testNow.Add(-2*time.Hour), ""),
	)

	require.NoError(t, a.List(context.Background(), []string{"SAD"}))
	assert.Contains(t, out.String(), "[e2]")
	assert.NotContains(t, out.String(), "[e1]")

	out.Reset()
	require.NoError(t, a.List(context.Background(), []string{"angry"}))
	assert.Contains(t, out.String(), "No angry entries.")

	require.ErrorIs(t, a.List(context.Background(), []string{"bored"}), models.ErrValidation)
}

func TestList_EmptyAndDrafts(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)

	require.NoError(t, a.List(context.Background(), nil))
	assert.Contains(t, out.String(), "No entries yet.")

	draft := entry("", models.EmotionAnxious, testNow.Add(-time.Minute), "")
	draft.LocalID, draft.Synced = "local-1", false
	require.NoError(t, a.store.AddEntry(context.Background(), draft))

	out.Reset()
	require.NoError(t, a.List(context.Background(), []string{"all"}))
	assert.Contains(t, out.String(), "[pending]")
	assert.Contains(t, out.String(), "(not synced)")
}

func TestResolveID(t *testing.T) {
	a, _ := newTestApp(t)
	logIn(t, a)
	seed(t, a,
		entry("aaaa1111", models.EmotionHappy, testNow.Add(-time.Hour), ""),
		entry("aaaa2222", models.EmotionSad, testNow.Add(-2*time.Hour), ""),
		entry("bbbb3333", models.EmotionSad, testNow.Add(-3*time.Hour), ""),
	)

	id, err := a.resolveID("bbbb")
	require.NoError(t, err)
	assert.Equal(t, "bbbb3333", id)

	id, err = a.resolveID("aaaa2222")
	require.NoError(t, err)
	assert.Equal(t, "aaaa2222", id)

	id, err = a.resolveID("zzzz")
	require.NoError(t, err)
	assert.Equal(t, "zzzz", id, "unknown ids go to the server as typed")

	_, err = a.resolveID("aaaa")
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = a.resolveID(" ")
	require.ErrorIs(t, err, models.ErrValidation)
}

func TestShow_FetchesFromServer(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	seed(t, a, entry("entry-123456", models.EmotionHappy, testNow.Add(-time.Hour), "cached"))

	fresh := entry("entry-123456", models.EmotionHappy, testNow.Add(-time.Hour), "from server")
	fresh.AIProcessed, fresh.AIInsight = true, "You seem rested."
	entries := &fakeEntries{getFn: func(string) (*models.MoodEntry, error) { return &fresh, nil }}
	a.entryService = entries

	require.NoError(t, a.Show(context.Background(), []string{"entry-12"}))

	assert.Equal(t, []string{"entry-123456"}, entries.gets)
	assertInOrder(t, out.String(), "ID:       entry-123456", "Date:     Today, 2:00 PM", "Happy", "from server", "You seem rested.")
}

func TestShow_FallsBackToCacheWhenUnavailable(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	seed(t, a, entry("e1", models.EmotionSad, testNow.Add(-time.Hour), "cached note"))
	a.entryService = &fakeEntries{getFn: func(string) (*models.MoodEntry, error) {
		return nil, client.ErrUnavailable
	}}

	require.NoError(t, a.Show(context.Background(), []string{"e1"}))
	assert.Contains(t, out.String(), "showing the copy saved on this device")
	assert.Contains(t, out.String(), "cached note")
	assert.Contains(t, out.String(), "still being generated")
}

func TestShow_NotFoundIsReturned(t *testing.T) {
	a, _ := newTestApp(t)
	logIn(t, a)
	seed(t, a, entry("e1", models.EmotionSad, testNow.Add(-time.Hour), ""))
	a.entryService = &fakeEntries{getFn: func(string) (*models.MoodEntry, error) {
		return nil, &client.APIError{Status: 404, Message: "Entry not found"}
	}}

	require.ErrorIs(t, a.Show(context.Background(), []string{"e1"}), client.ErrNotFound)
	require.ErrorIs(t, a.Show(context.Background(), nil), models.ErrValidation)
}

func TestEdit_BuildsPatchFromAnswers(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	seed(t, a, entry("e1", models.EmotionHappy, testNow.Add(-time.Hour), "old note"))

	var gotID string
	entries := &fakeEntries{updateFn: func(id string, p models.EntryPatch) (*models.MoodEntry, error) {
		gotID = id
		e := p.Apply(entry("e1", models.EmotionHappy, testNow.Add(-time.Hour), "old note"))
		return &e, nil
	}}
	a.entryService = entries

	stubAnswers(t, "sad", "-", "2026-10-16 18:00")

	require.NoError(t, a.Edit(context.Background(), []string{"e1"}))

	require.Len(t, entries.updates, 1)
	p := entries.updates[0]
	assert.Equal(t, "e1", gotID)
	require.NotNil(t, p.Mood)
	assert.Equal(t, models.EmotionSad, p.Mood.Emotion)
	require.NotNil(t, p.TextNote)
	assert.Equal(t, "", *p.TextNote)
	require.NotNil(t, p.EntryDate)
	assert.True(t, p.EntryDate.Equal(time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)))
	assert.Contains(t, out.String(), "Updated.")
	assert.Empty(t, entries.gets, "cached entry is used")
}

func TestEdit_KeepsEverythingOnEmptyAnswers(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	seed(t, a, entry("e1", models.EmotionHappy, testNow.Add(-time.Hour), "note"))
	entries := &fakeEntries{}
	a.entryService = entries

	stubAnswers(t, "", "", "")

	require.NoError(t, a.Edit(context.Background(), []string{"e1"}))
	assert.Empty(t, entries.updates)
	assert.Contains(t, out.String(), "Nothing to change.")
}

func TestEdit_UnknownEntryIsFetched(t *testing.T) {
	a, _ := newTestApp(t)
	logIn(t, a)
	entries := &fakeEntries{getFn: func(string) (*models.MoodEntry, error) {
		return nil, &client.APIError{Status: 404, Message: "Entry not found"}
	}}
	a.entryService = entries

	require.ErrorIs(t, a.Edit(context.Background(), []string{"nope"}), client.ErrNotFound)
	assert.Equal(t, []string{"nope"}, entries.gets)
}

func TestDelete_AsksForConfirmation(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	seed(t, a, entry("e1", models.EmotionHappy, testNow.Add(-time.Hour), ""))
	entries := &fakeEntries{}
	a.entryService = entries

	stubAnswers(t, "n")
	require.NoError(t, a.Delete(context.Background(), []string{"e1"}))
	assert.Empty(t, entries.deleted)
	assert.Contains(t, out.String(), "Cancelled.")

	stubAnswers(t, "Y")
	require.NoError(t, a.Delete(context.Background(), []string{"e1"}))
	assert.Equal(t, []string{"e1"}, entries.deleted)
	assert.Contains(t, out.String(), "Deleted.")
}

func TestRefresh_WithDays(t *testing.T) {
	a, out := newTestApp(t)
	logIn(t, a)
	entries := &fakeEntries{refreshFn: func(models.EntryQuery) (*models.EntryList, error) {
		return &models.EntryList{
			Entries:    []models.MoodEntry{entry("e1", models.EmotionHappy, testNow, "")},
			Pagination: models.Pagination{Total: 5, Returned: 1},
		}, nil
	}}
	a.entryService = entries

	require.NoError(t, a.Refresh(context.Background(), []string{"30"}))
	require.Len(t, entries.queries, 1)
	require.NotNil(t, entries.queries[0].Days)
	assert.Equal(t, 30, *entries.queries[0].Days)
	assert.Contains(t, out.String(), "Loaded 1 of 5 entries.")

	require.ErrorIs(t, a.Refresh(context.Background(), []string{"0"}), models.ErrValidation)
	assert.Len(t, entries.queries, 1)
}

func TestRefresh_DefaultQuery(t *testing.T) {
	a, _ := newTestApp(t)
	logIn(t, a)
	entries := &fakeEntries{}
	a.entryService = entries

	require.NoError(t, a.Refresh(context.Background(), nil))
	assert.Equal(t, []models.EntryQuery{{}}, entries.queries)
}
