package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// timestampLayouts lists the wire formats the backend is known to emit:
// RFC 3339 with or without zone, Python isoformat without zone, and the
// RFC 1123 form Flask's JSON encoder produces for datetimes.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123,
	time.RFC1123Z,
}

// Timestamp is a time.Time that tolerates the backend's mixed date formats
// and serializes as RFC 3339. JSON null and "" decode to the zero value.
// Values are held in UTC so a persisted entry restores identical to the one
// saved; callers convert with In when rendering.
type Timestamp struct {
	time.Time
}

// At wraps t in UTC, without a monotonic reading.
func At(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if b[0] != '"' {
		// Epoch seconds, or milliseconds when the magnitude says so.
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", b, err)
		}
		if f > 1e12 {
			t.Time = time.UnixMilli(int64(f)).UTC()
		} else {
			t.Time = time.Unix(0, int64(f*float64(time.Second))).UTC()
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses s with every known backend layout and returns the
// instant in UTC. Zone-less values are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
