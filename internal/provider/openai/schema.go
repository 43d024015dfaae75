package openai

import (
	"encoding/json"

	"github.com/openai/openai-go"
	ai "github.com/spetersoncode/steward"
)

// schemaFormat requests a strict JSON schema reply.
func schemaFormat(schema *ai.ResponseSchema) openai.ChatCompletionNewParamsResponseFormatUnion {
	var doc map[string]any
	_ = json.Unmarshal(schema.Schema, &doc)
	closeObjects(doc)

	name := schema.Name
	if name == "" {
		name = "response"
	}
	format := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   name,
		Schema: doc,
		Strict: openai.Bool(true),
	}
	if schema.Description != "" {
		format.Description = openai.String(schema.Description)
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: format},
	}
}

// closeObjects sets additionalProperties false on every object schema,
// which strict mode requires.
func closeObjects(schema map[string]any) {
	if schema == nil {
		return
	}
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if m, ok := p.(map[string]any); ok {
				closeObjects(m)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		closeObjects(items)
	}
}
