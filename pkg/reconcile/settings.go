package reconcile

import (
	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/protocol"
)

// StyleKey is the prop that carries layout attributes. It never reaches
// the compositor settings.
const StyleKey = "style"

// MergeSettings writes props into s in order. Undefined unsets a key and
// objects merge recursively into the nested settings object under the same
// key, creating it when the key is missing or holds a scalar. The
// top-level style prop is skipped.
func MergeSettings(s *compositor.Settings, props protocol.Props) {
	for _, p := range props {
		if p.Key == StyleKey {
			continue
		}
		mergeValue(s, p.Key, p.Value)
	}
}

func mergeValue(s *compositor.Settings, key string, v protocol.Value) {
	switch v.Kind() {
	case protocol.KindUndefined:
		s.Unset(key)
	case protocol.KindBool:
		b, _ := v.AsBool()
		s.SetBool(key, b)
	case protocol.KindInt:
		i, _ := v.AsInt()
		// A float setting stays a float when the client sends a whole
		// number.
		if old, ok := s.Get(key); ok {
			if _, isFloat := old.(float64); isFloat {
				s.SetDouble(key, float64(i))
				return
			}
		}
		s.SetInt(key, i)
	case protocol.KindFloat:
		f, _ := v.AsFloat()
		s.SetDouble(key, f)
	case protocol.KindString:
		str, _ := v.AsString()
		s.SetString(key, str)
	case protocol.KindObject:
		obj, _ := v.AsObject()
		nested := s.Object(key)
		if nested == nil {
			nested = compositor.NewSettings()
			s.SetObject(key, nested)
		}
		for _, p := range obj {
			mergeValue(nested, p.Key, p.Value)
		}
	}
}
