// Package models defines the data exchanged between the mood journal client,
// its local session store, and the REST backend.
package models

import (
	"fmt"
	"strings"
)

// Emotion is the fixed set of mood tags an entry can carry.
type Emotion string

const (
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionNeutral Emotion = "neutral"
	EmotionAngry   Emotion = "angry"
	EmotionAnxious Emotion = "anxious"

	// EmotionAll is the filter sentinel meaning "do not filter".
	EmotionAll Emotion = "all"
)

var emotions = []Emotion{EmotionHappy, EmotionSad, EmotionNeutral, EmotionAngry, EmotionAnxious}

var emotionEmoji = map[Emotion]string{
	EmotionHappy:   "😊",
	EmotionSad:     "😢",
	EmotionNeutral: "😐",
	EmotionAngry:   "😡",
	EmotionAnxious: "😰",
}

var emotionColor = map[Emotion]string{
	EmotionHappy:   "#4CAF50",
	EmotionSad:     "#FF5722",
	EmotionNeutral: "#FFC107",
	EmotionAngry:   "#F44336",
	EmotionAnxious: "#FF9800",
}

// Emotions returns the enumerated emotions in display order.
func Emotions() []Emotion {
	out := make([]Emotion, len(emotions))
	copy(out, emotions)
	return out
}

// Valid reports whether e is one of the enumerated emotions. EmotionAll is
// a filter value, not a mood, and is not valid here.
func (e Emotion) Valid() bool {
	_, ok := emotionEmoji[e]
	return ok
}

// Emoji is the default glyph for e.
func (e Emotion) Emoji() string {
	if g, ok := emotionEmoji[e]; ok {
		return g
	}
	return emotionEmoji[EmotionNeutral]
}

// Color is the hex color used to render e; unknown emotions render neutral.
func (e Emotion) Color() string {
	if c, ok := emotionColor[e]; ok {
		return c
	}
	return emotionColor[EmotionNeutral]
}

// Title is e with its first letter upper-cased.
func (e Emotion) Title() string {
	if e == "" {
		return "Unknown"
	}
	s := string(e)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseEmotion accepts an emotion name or "all" (case-insensitive).
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if e == EmotionAll || e.Valid() {
		return e, nil
	}
	return "", &ValidationError{Field: "emotion", Reason: fmt.Sprintf("unknown emotion %q", s)}
}

// Mood is the emoji glyph plus emotion tag of an entry.
type Mood struct {
	Emoji   string  `json:"emoji"`
	Emotion Emotion `json:"emotion"`
}

// AudioFile describes an uploaded voice note.
type AudioFile struct {
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename,omitempty"`
	FileSize         int64     `json:"file_size"`
	Duration         *float64  `json:"duration,omitempty"`
	ContentType      string    `json:"content_type,omitempty"`
	UploadedAt       Timestamp `json:"uploaded_timestamp"`
	URL              string    `json:"url,omitempty"`
}

// InsightStatus is the tri-state AI processing status of an entry.
type InsightStatus string

const (
	InsightPending   InsightStatus = "pending"
	InsightSucceeded InsightStatus = "succeeded"
	InsightFailed    InsightStatus = "failed"
)

// MoodEntry is one journal record. EntryDate is when the mood occurred and
// drives every ordering and grouping; CreatedAt is only bookkeeping.
type MoodEntry struct {
	ID     string `json:"id"`
	UserID string `json:"user_id,omitempty"`
	// Owner is the nested user object some endpoints return instead of user_id.
	Owner *User `json:"user,omitempty"`

	Mood      *Mood      `json:"mood,omitempty"`
	TextNote  string     `json:"text_note,omitempty"`
	AudioFile *AudioFile `json:"audio_file,omitempty"`

	AIInsight          string     `json:"ai_insight,omitempty"`
	AIProcessed        bool       `json:"ai_processed"`
	AIProcessingFailed bool       `json:"ai_processing_failed"`
	AIErrorMessage     string     `json:"ai_error_message,omitempty"`
	AIProcessedAt      *Timestamp `json:"ai_processed_at,omitempty"`

	EntryDate Timestamp `json:"entry_date"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`

	LocalID string `json:"local_id,omitempty"`
	Synced  bool   `json:"synced"`
}

// OwnerID returns the owning user id from whichever field the server filled.
func (e MoodEntry) OwnerID() string {
	if e.UserID != "" {
		return e.UserID
	}
	if e.Owner != nil {
		return e.Owner.ID
	}
	return ""
}

// Emotion returns the entry's emotion, or false when it carries no mood.
func (e MoodEntry) Emotion() (Emotion, bool) {
	if e.Mood == nil || e.Mood.Emotion == "" {
		return "", false
	}
	return e.Mood.Emotion, true
}

// InsightStatus folds the ai_* flags into the tri-state status.
func (e MoodEntry) InsightStatus() InsightStatus {
	switch {
	case e.AIProcessingFailed:
		return InsightFailed
	case e.AIProcessed:
		return InsightSucceeded
	default:
		return InsightPending
	}
}

// Clone returns a deep copy so cached entries never share pointers with callers.
func (e MoodEntry) Clone() MoodEntry {
	c := e
	if e.Owner != nil {
		u := *e.Owner
		c.Owner = &u
	}
	if e.Mood != nil {
		m := *e.Mood
		c.Mood = &m
	}
	if e.AudioFile != nil {
		a := *e.AudioFile
		if e.AudioFile.Duration != nil {
			d := *e.AudioFile.Duration
			a.Duration = &d
		}
		c.AudioFile = &a
	}
	if e.AIProcessedAt != nil {
		ts := *e.AIProcessedAt
		c.AIProcessedAt = &ts
	}
	return c
}
