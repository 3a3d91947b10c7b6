package smx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"strings"
)

// Operating system names used as OSValue override keys. They match runtime.GOOS.
const (
	OSWindows = "windows"
	OSLinux   = "linux"
	OSDarwin  = "darwin"
)

// Kind discriminates the two shapes a stored setting can take.
type Kind uint8

const (
	// KindPlain is a JSON scalar, null or an array of scalars.
	KindPlain Kind = iota
	// KindOS is a default value with optional per operating system overrides.
	KindOS
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindOS:
		return "os"
	default:
		return "unknown"
	}
}

// OSValue is a settings value that carries a default plus optional
// per operating system overrides.
//
// On disk it is a flat JSON object:
//
//	{"value": "code", "windows": "code.cmd"}
type OSValue struct {
	Value     any
	Overrides map[string]any
}

// Resolve returns the override for goos if present, else the default value.
// An override that is explicitly null is still an override.
func (v OSValue) Resolve(goos string) any {
	if o, found := v.Overrides[goos]; found {
		return o
	}

	return v.Value
}

// MarshalJSON implements json.Marshaler.
func (v OSValue) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(v.Overrides)+1)
	maps.Copy(m, v.Overrides)
	m["value"] = v.Value

	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *OSValue) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}

	v.Value = m["value"]
	delete(m, "value")
	v.Overrides = nil
	if len(m) > 0 {
		v.Overrides = m
	}

	return nil
}

// Setting is a single entry of a settings object. It is either a plain
// value (KindPlain) or an OSValue (KindOS). The zero value is a plain null.
type Setting struct {
	kind  Kind
	plain any
	os    OSValue
}

// NewPlain wraps a scalar or scalar slice. Go numbers are stored as
// float64 and slices as []any so a value survives a JSON round trip unchanged.
func NewPlain(v any) Setting {
	return Setting{kind: KindPlain, plain: normalizeValue(v)}
}

// NewOS wraps an OSValue.
func NewOS(v OSValue) Setting {
	ov := OSValue{Value: normalizeValue(v.Value)}
	if len(v.Overrides) > 0 {
		ov.Overrides = make(map[string]any, len(v.Overrides))
		for k, o := range v.Overrides {
			ov.Overrides[k] = normalizeValue(o)
		}
	}

	return Setting{kind: KindOS, os: ov}
}

// Kind returns the shape of the setting.
func (s Setting) Kind() Kind {
	return s.kind
}

// Value returns the plain value, or the default value of an OSValue.
func (s Setting) Value() any {
	if s.kind == KindOS {
		return s.os.Value
	}

	return s.plain
}

// OS returns the OSValue and true if the setting is KindOS.
func (s Setting) OS() (OSValue, bool) {
	if s.kind != KindOS {
		return OSValue{}, false
	}

	return s.os, true
}

// Resolve returns the effective value on goos.
func (s Setting) Resolve(goos string) any {
	if s.kind == KindOS {
		return s.os.Resolve(goos)
	}

	return s.plain
}

// WithOS returns a copy of s with v stored as the override for goos.
// A plain setting is upgraded to an OSValue whose default is the old
// plain value, so the other operating systems keep reading it.
func (s Setting) WithOS(goos string, v any) Setting {
	ov := OSValue{
		Value:     s.Value(),
		Overrides: make(map[string]any, len(s.os.Overrides)+1),
	}
	if s.kind == KindOS {
		maps.Copy(ov.Overrides, s.os.Overrides)
	}
	ov.Overrides[goos] = normalizeValue(v)

	return Setting{kind: KindOS, os: ov}
}

// String implements fmt.Stringer.
func (s Setting) String() string {
	buf, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%v", s.Value())
	}

	return string(buf)
}

// MarshalJSON implements json.Marshaler.
func (s Setting) MarshalJSON() ([]byte, error) {
	if s.kind == KindOS {
		return json.Marshal(s.os)
	}

	return json.Marshal(s.plain)
}

// UnmarshalJSON implements json.Unmarshaler. Settings never nest objects,
// so any JSON object is decoded as an OSValue.
func (s *Setting) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
		var ov OSValue
		if err := json.Unmarshal(b, &ov); err != nil {
			return err
		}
		*s = Setting{kind: KindOS, os: ov}

		return nil
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Setting{kind: KindPlain, plain: v}

	return nil
}

// Settings maps dotted keys to their stored values.
type Settings map[string]Setting

// Clone returns a shallow copy of the settings object.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}

	return maps.Clone(s)
}

// ParseValue converts command line input into a settings value. JSON
// literals (numbers, booleans, null, quoted strings and arrays) are decoded,
// everything else is kept as a string.
func ParseValue(in string) any {
	trimmed := strings.TrimSpace(in)
	if trimmed == "" {
		return in
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return in
	}
	if _, isObject := v.(map[string]any); isObject {
		return in
	}

	return v
}

// normalizeValue maps Go values onto the types encoding/json produces.
func normalizeValue(v any) any {
	switch tv := v.(type) {
	case nil, string, bool, float64:
		return v
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = normalizeValue(e)
		}

		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}

		return out
	default:
		return v
	}
}
