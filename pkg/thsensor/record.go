package thsensor

import (
	"fmt"
	"math"
)

// Record is the flat field mapping of a decoded uplink, keyed the way The
// Things Network payload formatter reports it.
type Record map[string]any

// FieldSet offers typed helpers on top of a Record.
type FieldSet struct {
	data Record
}

// Fields returns a FieldSet wrapper for the record.
func (r Record) Fields() FieldSet {
	return FieldSet{data: r}
}

// Raw returns the stored value without conversions.
func (fs FieldSet) Raw(key string) (any, bool) {
	if fs.data == nil {
		return nil, false
	}
	v, ok := fs.data[key]
	return v, ok
}

// Has reports whether key is present.
func (fs FieldSet) Has(key string) bool {
	_, ok := fs.Raw(key)
	return ok
}

// Float returns a numeric field as float64. Records hold int and float64
// values; after a JSON round trip every number is float64.
func (fs FieldSet) Float(key string) (float64, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q has unsupported type %T", key, v)
	}
}

// Int returns a numeric field as int. Fractional values are rejected.
func (fs FieldSet) Int(key string) (int, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("field %q is not integer: %v", key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %q has unsupported type %T", key, v)
	}
}

// String returns the field formatted as a string.
func (fs FieldSet) String(key string) (string, error) {
	v, ok := fs.Raw(key)
	if !ok {
		return "", fmt.Errorf("field %q missing", key)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}
