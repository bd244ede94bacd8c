package models

import (
	"fmt"
	"path/filepath"
)

// Insight is the per-entry AI insight. A not-yet-processed insight is a
// normal response, not an error.
type Insight struct {
	EntryID      string     `json:"entry_id"`
	Insight      *string    `json:"insight"`
	Processed    bool       `json:"processed"`
	Failed       bool       `json:"failed,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ProcessedAt  *Timestamp `json:"processed_at,omitempty"`
	Regenerated  bool       `json:"regenerated,omitempty"`
}

func (i Insight) Status() InsightStatus {
	switch {
	case i.Failed:
		return InsightFailed
	case i.Processed:
		return InsightSucceeded
	default:
		return InsightPending
	}
}

// Text returns the insight text or "" when there is none yet.
func (i Insight) Text() string {
	if i.Insight == nil {
		return ""
	}
	return *i.Insight
}

// Patch converts the insight into the cache fields of its entry.
func (i Insight) Patch() EntryPatch {
	text := i.Text()
	processed := i.Processed
	failed := i.Failed
	msg := i.ErrorMessage
	p := EntryPatch{
		AIInsight:          &text,
		AIProcessed:        &processed,
		AIProcessingFailed: &failed,
		AIErrorMessage:     &msg,
	}
	if i.ProcessedAt != nil {
		ts := *i.ProcessedAt
		p.AIProcessedAt = &ts
	}
	return p
}

// WeeklySummary is the period-level AI summary.
type WeeklySummary struct {
	Summary      string    `json:"summary"`
	EntriesCount int       `json:"entries_count"`
	Period       string    `json:"period"`
	GeneratedAt  Timestamp `json:"generated_at"`
}

// MoodStats is the aggregate the server computes over recent entries.
type MoodStats struct {
	TotalEntries     int            `json:"total_entries"`
	AverageMood      float64        `json:"average_mood"`
	MoodDistribution map[string]int `json:"mood_distribution"`
	RecentTrend      string         `json:"recent_trend"`
	Period           string         `json:"period"`
}

// AudioUpload is a voice note the caller wants to attach to an entry.
type AudioUpload struct {
	EntryID  string
	Path     string
	Duration *float64
}

const MaxAudioSize = 16 << 20

var audioContentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"m4a":  "audio/x-m4a",
	"ogg":  "audio/ogg",
	"aac":  "audio/aac",
	"flac": "audio/flac",
}

// AudioContentType maps an audio file name to the content type the backend
// accepts for it.
func AudioContentType(name string) (string, error) {
	ct, ok := audioContentTypes[normalizeExt(filepath.Ext(name))]
	if !ok {
		return "", &ValidationError{Field: "audio", Reason: fmt.Sprintf("unsupported audio file %q", filepath.Base(name))}
	}
	return ct, nil
}

// ValidateAudioSize rejects empty and oversized uploads.
func ValidateAudioSize(size int64) error {
	if size <= 0 {
		return &ValidationError{Field: "audio", Reason: "audio file is empty"}
	}
	if size > MaxAudioSize {
		return &ValidationError{Field: "audio", Reason: "audio file is larger than 16MB"}
	}
	return nil
}
