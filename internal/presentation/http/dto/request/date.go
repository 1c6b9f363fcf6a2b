package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date sent as YYYY-MM-DD. A full RFC 3339 timestamp is
// accepted and truncated to its date.
type Date struct {
	time.Time
}

// UnmarshalJSON parses a quoted date
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns UTC midnight of that date
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
