package domain

import (
	"time"
)

// Record is a raw remote row. The transport returns loosely typed
// values: absent scalars arrive as boolean false, relations as
// [id, label] tuples and one-to-many links as id arrays. Record is
// only handled at the decoding boundary; everything past it is typed.
type Record map[string]any

func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Str returns the string value, treating boolean false (the remote
// convention for null) as empty.
func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns the boolean value; a missing key defaults to def.
func (r Record) Bool(key string, def bool) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return def
}

// IDs decodes a one-to-many link ([]id).
func (r Record) IDs(key string) []int64 {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case float64:
			out = append(out, int64(v))
		case int64:
			out = append(out, v)
		case int:
			out = append(out, int64(v))
		}
	}
	return out
}

// Relation decodes a many-to-one tuple ([id, label]).
func (r Record) Relation(key string) (int64, string) {
	raw, ok := r[key].([]any)
	if !ok || len(raw) < 2 {
		return 0, ""
	}
	var id int64
	switch v := raw[0].(type) {
	case float64:
		id = int64(v)
	case int64:
		id = v
	case int:
		id = int64(v)
	}
	label, _ := raw[1].(string)
	return id, label
}

// Time parses the source's datetime format ("2006-01-02 15:04:05").
func (r Record) Time(key string) time.Time {
	raw := r.Str(key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02 15:04:05", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
