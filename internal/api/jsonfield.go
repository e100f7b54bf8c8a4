package api

import (
	"encoding/json"
	"math"
)

// Fields is a lazily decoded JSON object. Lookups never fail: a missing
// key or a value of the wrong type reports ok=false and the zero value.
type Fields map[string]json.RawMessage

func ParseFields(raw []byte) Fields {
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return f
}

func (f Fields) Object(key string) Fields {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	return ParseFields(raw)
}

func (f Fields) Array(key string) []json.RawMessage {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func (f Fields) String(key string) (string, bool) {
	raw, ok := f[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func (f Fields) Float(key string) (float64, bool) {
	raw, ok := f[key]
	if !ok {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

// Int accepts only integral JSON numbers.
func (f Fields) Int(key string) (int, bool) {
	v, ok := f.Float(key)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

func (f Fields) Bool(key string) (bool, bool) {
	raw, ok := f[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

func (f Fields) IntOrZero(key string) int {
	v, _ := f.Int(key)
	return v
}

func (f Fields) FloatOrZero(key string) float64 {
	v, _ := f.Float(key)
	return v
}

func (f Fields) StringOrEmpty(key string) string {
	v, _ := f.String(key)
	return v
}
