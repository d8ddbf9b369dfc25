package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the wire format for booking and comment times.
const TimestampLayout = "2006-01-02T15:04:05"

// Timestamp carries a UTC instant in TimestampLayout on the wire.
// RFC 3339 input is accepted as well.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func ParseTimestamp(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimestampLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %s", raw, TimestampLayout)
	}
	return t.UTC(), nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(TimestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
