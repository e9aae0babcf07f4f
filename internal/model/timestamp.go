package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp accepts both RFC 3339 values and zone-less local date-times
// ("2024-05-01T10:20:30.123"), which is what the API emits for most entities.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", raw)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// Display renders the timestamp for humans in local time; zero values render empty.
func (ts Timestamp) Display() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("2006-01-02 15:04")
}

// Clock renders only the hour and minute, as chat threads do.
func (ts Timestamp) Clock() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("15:04")
}

// Key is the raw wire-ish form used inside composite list keys.
func (ts Timestamp) Key() string {
	if ts.IsZero() {
		return ""
	}
	return ts.Time.Format(time.RFC3339Nano)
}
