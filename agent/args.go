package agent

import (
	"fmt"
	"strconv"
	"strings"
)

// Args are the named arguments of a tool call. Router-chosen arguments are
// always strings; direct calls may pass any value.
type Args map[string]any

// Has reports whether name is present.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns the argument formatted as a string, or "" when absent.
func (a Args) String(name string) string {
	v, ok := a[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the argument as an int, parsing strings.
func (a Args) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingArg, name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("agent: argument %s: %w", name, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("agent: argument %s has type %T", name, v)
	}
}

// Bool returns the argument as a bool, parsing strings. Absent or
// unparsable values are false.
func (a Args) Bool(name string) bool {
	switch b := a[name].(type) {
	case bool:
		return b
	case string:
		v, _ := strconv.ParseBool(strings.TrimSpace(b))
		return v
	}
	return false
}

func argsFromRouter(m map[string]string) Args {
	a := make(Args, len(m))
	for k, v := range m {
		a[k] = v
	}
	return a
}
