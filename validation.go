package smx

import (
	"fmt"
	"math"
	"strings"
)

// ValueType names a primitive settings value type.
type ValueType string

// Primitive value types. JSON has no undefined, so TypeNull and
// TypeUndefined both accept nil.
const (
	TypeString    ValueType = "string"
	TypeNumber    ValueType = "number"
	TypeBoolean   ValueType = "boolean"
	TypeNull      ValueType = "null"
	TypeUndefined ValueType = "undefined"
)

// ArrayPolicy controls whether a setting may hold an array.
type ArrayPolicy uint8

const (
	// ArrayForbidden rejects arrays.
	ArrayForbidden ArrayPolicy = iota
	// ArrayForce requires an array, every element must match the types.
	ArrayForce
	// ArrayOptional accepts a matching scalar or an array of matching elements.
	ArrayOptional
)

// String implements fmt.Stringer.
func (p ArrayPolicy) String() string {
	switch p {
	case ArrayForbidden:
		return "forbidden"
	case ArrayForce:
		return "force"
	case ArrayOptional:
		return "optional"
	default:
		return "unknown"
	}
}

// Definition declares the acceptable values of a settings key.
type Definition struct {
	Key   string
	Types []ValueType
	Array ArrayPolicy
}

func (d Definition) accepts(v any) bool {
	t, ok := typeOf(v)
	if !ok {
		return false
	}

	for _, want := range d.Types {
		if want == t || (t == TypeNull && want == TypeUndefined) {
			return true
		}
	}

	return false
}

// ValidationError describes why a value was rejected.
type ValidationError struct {
	Key     string
	Index   int // offending array element, -1 for scalars
	Allowed []ValueType
	Reason  string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid value for %q: %s", e.Key, e.Reason)
	}

	allowed := make([]string, 0, len(e.Allowed))
	for _, t := range e.Allowed {
		allowed = append(allowed, string(t))
	}

	return fmt.Sprintf("invalid value for %q: %s (allowed: %s)", e.Key, e.Reason, strings.Join(allowed, "|"))
}

// Unwrap makes ValidationError match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validator type checks settings values against registered definitions.
// Keys without a definition accept any value.
type Validator struct {
	defs map[string]Definition
}

// NewValidator creates a Validator with the given definitions.
func NewValidator(defs ...Definition) *Validator {
	v := &Validator{
		defs: make(map[string]Definition, len(defs)),
	}
	for _, d := range defs {
		v.AddDefinition(d)
	}

	return v
}

// AddDefinition registers d, replacing an existing definition for the same key.
func (v *Validator) AddDefinition(d Definition) {
	v.defs[d.Key] = d
}

// Definition returns the definition registered for key.
func (v *Validator) Definition(key string) (Definition, bool) {
	d, found := v.defs[key]

	return d, found
}

// Validate checks value against the definition of key. It returns a
// *ValidationError naming the first offending array index, if any.
func (v *Validator) Validate(key string, value any) error {
	d, found := v.defs[key]
	if !found {
		return nil
	}

	value = normalizeValue(value)

	if arr, isArray := value.([]any); isArray {
		if d.Array == ArrayForbidden {
			return &ValidationError{Key: key, Index: -1, Allowed: d.Types, Reason: "arrays are not allowed"}
		}

		for i, e := range arr {
			if !d.accepts(e) {
				return &ValidationError{
					Key:     key,
					Index:   i,
					Allowed: d.Types,
					Reason:  fmt.Sprintf("element %d is %s", i, describe(e)),
				}
			}
		}

		return nil
	}

	if d.Array == ArrayForce {
		return &ValidationError{Key: key, Index: -1, Allowed: d.Types, Reason: "value must be an array"}
	}

	if !d.accepts(value) {
		return &ValidationError{Key: key, Index: -1, Allowed: d.Types, Reason: "value is " + describe(value)}
	}

	return nil
}

// checkStorable rejects values a settings object can not hold, whether or
// not key has a definition: only scalars, null and arrays of those are
// stored as plain values. Objects would read back as an OSValue.
func checkStorable(key string, value any) error {
	value = normalizeValue(value)

	if arr, isArray := value.([]any); isArray {
		for i, e := range arr {
			if _, ok := typeOf(e); !ok || !finite(e) {
				return &ValidationError{
					Key:    key,
					Index:  i,
					Reason: fmt.Sprintf("element %d is %s", i, describe(e)),
				}
			}
		}

		return nil
	}

	if _, ok := typeOf(value); !ok || !finite(value) {
		return &ValidationError{Key: key, Index: -1, Reason: "value is " + describe(value)}
	}

	return nil
}

func finite(v any) bool {
	f, ok := v.(float64)

	return !ok || (!math.IsNaN(f) && !math.IsInf(f, 0))
}

func typeOf(v any) (ValueType, bool) {
	switch v.(type) {
	case nil:
		return TypeNull, true
	case string:
		return TypeString, true
	case float64:
		return TypeNumber, true
	case bool:
		return TypeBoolean, true
	default:
		return "", false
	}
}

func describe(v any) string {
	if t, ok := typeOf(v); ok {
		return string(t)
	}

	return fmt.Sprintf("%T", v)
}

// DefaultDefinitions returns the definitions of keys used outside of sections.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Key: DefaultTargetKey, Types: []ValueType{TypeString}},
		{Key: TargetFolderKey, Types: []ValueType{TypeString}},
	}
}
