package google

import (
	"encoding/json"

	"google.golang.org/genai"
)

var schemaTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// convertSchema translates the JSON Schema subset produced by
// steward.SchemaFor into a Gemini response schema.
func convertSchema(raw json.RawMessage) *genai.Schema {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return schemaFromMap(doc)
}

func schemaFromMap(doc map[string]any) *genai.Schema {
	if doc == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := doc["type"].(string); ok {
		s.Type = schemaTypes[t]
	}
	s.Description, _ = doc["description"].(string)
	s.Enum = stringList(doc["enum"])
	s.Required = stringList(doc["required"])
	if props, ok := doc["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if m, ok := p.(map[string]any); ok {
				s.Properties[name] = schemaFromMap(m)
			}
		}
	}
	if items, ok := doc["items"].(map[string]any); ok {
		s.Items = schemaFromMap(items)
	}
	return s
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
