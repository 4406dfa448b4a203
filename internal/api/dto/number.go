package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number accepts a JSON number or a numeric string. Present is false when the
// field was absent or null; Valid is false when it was present but not numeric.
type Number struct {
	Value   float64
	Present bool
	Valid   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	n.Present = true

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		n.Value, n.Valid = v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err == nil {
			n.Value, n.Valid = parsed, true
		}
	}
	return nil
}

// MarshalJSON renders the value, or null when absent.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Present || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Float returns the value when it is present and numeric.
func (n Number) Float() (float64, bool) {
	return n.Value, n.Present && n.Valid
}
