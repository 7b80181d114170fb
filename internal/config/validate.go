package config

import (
	"fmt"
	"math"
	"regexp"
)

// ValidationError rejects a configuration because of a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// typeName names the dynamic type of a decoded value the way the
// configuration documentation does.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case Object:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// fieldPath joins a parent path and a field name for error messages.
func fieldPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func lookup(obj Object, parent, name string, required bool) (any, bool, error) {
	v, ok := obj.Get(name)
	if !ok {
		if required {
			return nil, false, invalid(fieldPath(parent, name), "is required")
		}
		return nil, false, nil
	}
	return v, true, nil
}

func validateString(obj Object, parent, name string, def string) (string, error) {
	v, ok, err := lookup(obj, parent, name, false)
	if err != nil || !ok {
		return def, err
	}
	s, isString := v.(string)
	if !isString {
		return "", invalid(fieldPath(parent, name), "must be a string, but is a %s", typeName(v))
	}
	return s, nil
}

func requireString(obj Object, parent, name string) (string, error) {
	v, _, err := lookup(obj, parent, name, true)
	if err != nil {
		return "", err
	}
	s, isString := v.(string)
	if !isString {
		return "", invalid(fieldPath(parent, name), "must be a string, but is a %s", typeName(v))
	}
	return s, nil
}

func validateBoolean(obj Object, parent, name string, def bool) (bool, error) {
	v, ok, err := lookup(obj, parent, name, false)
	if err != nil || !ok {
		return def, err
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, invalid(fieldPath(parent, name), "must be a boolean, but is a %s", typeName(v))
	}
	return b, nil
}

func validateNumber(obj Object, parent, name string, def float64) (float64, error) {
	v, ok, err := lookup(obj, parent, name, false)
	if err != nil || !ok {
		return def, err
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, invalid(fieldPath(parent, name), "must be a number, but is a %s", typeName(v))
}

func validateInteger(obj Object, parent, name string, def int) (int, error) {
	f, err := validateNumber(obj, parent, name, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, invalid(fieldPath(parent, name), "must be a whole number, but is %v", f)
	}
	return int(f), nil
}

func validatePositiveInteger(obj Object, parent, name string, def int) (int, error) {
	n, err := validateInteger(obj, parent, name, def)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, invalid(fieldPath(parent, name), "must be positive, but is %d", n)
	}
	return n, nil
}

// validateRegexp returns nil when the field is absent.
func validateRegexp(obj Object, parent, name string) (*regexp.Regexp, error) {
	if _, ok := obj.Get(name); !ok {
		return nil, nil
	}
	pattern, err := validateString(obj, parent, name, "")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, invalid(fieldPath(parent, name), "is not a valid regular expression: %v", err)
	}
	return re, nil
}
