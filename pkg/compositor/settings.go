package compositor

import (
	"encoding/json"
	"slices"
)

// Settings is a nested, typed key/value data object. Values are bool,
// int64, float64, string or *Settings. Keys keep their insertion order.
//
// Settings is not safe for concurrent use.
type Settings struct {
	keys   []string
	values map[string]any
}

// NewSettings returns an empty Settings.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]any)}
}

func (s *Settings) set(key string, v any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
}

// SetBool sets a boolean value.
func (s *Settings) SetBool(key string, v bool) { s.set(key, v) }

// SetInt sets an integer value.
func (s *Settings) SetInt(key string, v int64) { s.set(key, v) }

// SetDouble sets a floating point value.
func (s *Settings) SetDouble(key string, v float64) { s.set(key, v) }

// SetString sets a string value.
func (s *Settings) SetString(key string, v string) { s.set(key, v) }

// SetObject sets a nested object. A nil object unsets the key.
func (s *Settings) SetObject(key string, v *Settings) {
	if v == nil {
		s.Unset(key)
		return
	}
	s.set(key, v)
}

// Unset removes key. Missing keys are ignored.
func (s *Settings) Unset(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })
}

// Get returns the raw value stored under key.
func (s *Settings) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Object returns the nested object stored under key, or nil when the key
// is missing or holds a non-object value.
func (s *Settings) Object(key string) *Settings {
	obj, _ := s.values[key].(*Settings)
	return obj
}

// GetInt returns an integer value.
func (s *Settings) GetInt(key string) (int64, bool) {
	v, ok := s.values[key].(int64)
	return v, ok
}

// GetDouble returns a floating point value. Integers are converted.
func (s *Settings) GetDouble(key string) (float64, bool) {
	switch v := s.values[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// GetString returns a string value.
func (s *Settings) GetString(key string) (string, bool) {
	v, ok := s.values[key].(string)
	return v, ok
}

// GetBool returns a boolean value.
func (s *Settings) GetBool(key string) (bool, bool) {
	v, ok := s.values[key].(bool)
	return v, ok
}

// Keys returns the keys in insertion order.
func (s *Settings) Keys() []string {
	return slices.Clone(s.keys)
}

// Len returns the number of keys.
func (s *Settings) Len() int {
	return len(s.keys)
}

// Clone returns a deep copy. Cloning nil yields an empty Settings.
func (s *Settings) Clone() *Settings {
	out := NewSettings()
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		v := s.values[k]
		if obj, ok := v.(*Settings); ok {
			v = obj.Clone()
		}
		out.set(k, v)
	}
	return out
}

// Map returns the settings as plain nested maps.
func (s *Settings) Map() map[string]any {
	out := make(map[string]any, len(s.keys))
	for _, k := range s.keys {
		v := s.values[k]
		if obj, ok := v.(*Settings); ok {
			v = obj.Map()
		}
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (s *Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}
