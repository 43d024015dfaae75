package anthropic

import (
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/internal/provider"
)

// jsonToolName is the synthetic tool forced for structured output.
const jsonToolName = "structured_response"

// convertMessages maps the conversation onto Anthropic turns. Empty text
// is dropped since the API rejects empty blocks, and consecutive turns of
// the same role are merged because the API requires alternation.
func convertMessages(messages []ai.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		role := anthropic.MessageParamRoleUser
		if msg.Role == ai.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		block := anthropic.NewTextBlock(msg.Content)
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, block)
			continue
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: []anthropic.ContentBlockParamUnion{block}})
	}
	return out
}

// markCache sets cache breakpoints on the system prompt and on the last
// block of the two most recent user turns, so a follow-up turn reads the
// previous prefix from cache.
func markCache(system []anthropic.TextBlockParam, msgs []anthropic.MessageParam) {
	for i := range system {
		system[i].CacheControl = anthropic.NewCacheControlEphemeralParam()
	}
	marked := 0
	for i := len(msgs) - 1; i >= 0 && marked < 2; i-- {
		if msgs[i].Role != anthropic.MessageParamRoleUser || len(msgs[i].Content) == 0 {
			continue
		}
		if text := msgs[i].Content[len(msgs[i].Content)-1].OfText; text != nil {
			text.CacheControl = anthropic.NewCacheControlEphemeralParam()
			marked++
		}
	}
}

func jsonTool(schema *ai.ResponseSchema) (anthropic.ToolUnionParam, anthropic.ToolChoiceUnionParam) {
	var doc map[string]any
	if err := json.Unmarshal(schema.Schema, &doc); err != nil || doc == nil {
		doc = map[string]any{"type": "object"}
	}
	var required []string
	if list, ok := doc["required"].([]any); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				required = append(required, s)
			}
		}
	}
	description := "Respond with a JSON document."
	if schema.Description != "" {
		description = schema.Description
	}
	tool := anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        jsonToolName,
			Description: anthropic.String(description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: doc["properties"],
				Required:   required,
			},
		},
	}
	choice := anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: jsonToolName},
	}
	return tool, choice
}

// wrapError categorizes Anthropic API errors by status. Anything else,
// typically a network failure, is returned unchanged for the retry heuristics.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return provider.Categorize(err, apiErr.StatusCode, provider.RetryAfter(apiErr.Response))
}
