package steward

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
)

// ResponseSchema describes the JSON document a structured call must return.
type ResponseSchema struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// SchemaFor derives a response schema from the Go type T.
// Field names follow json tags; fields without omitempty are required.
func SchemaFor[T any]() (*ResponseSchema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.ReflectFromType(t)
	s.Version = ""
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	name := "response"
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		name = toSnakeCase(t.Name())
	}
	return &ResponseSchema{Name: name, Description: s.Description, Schema: raw}, nil
}

func toSnakeCase(s string) string {
	var out []rune
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
