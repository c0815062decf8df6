// Package timex provides helper types for working with durations in
// configuration files.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration wraps time.Duration so it can be used directly in JSON config
// structures. It accepts either an integer number of nanoseconds or a string
// in time.ParseDuration format ("300ms", "2h45m").
type Duration struct {
	time.Duration
}

// MarshalJSON returns the duration formatted with time.Duration.String.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses either a JSON number (nanoseconds) or a duration
// string.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}
