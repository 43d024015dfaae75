package steward

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type relevantFiles struct {
	FilePaths []string `json:"file_paths" jsonschema:"description=Paths relevant to the query"`
	Note      string   `json:"note,omitempty"`
}

func TestSchemaFor(t *testing.T) {
	rs, err := SchemaFor[relevantFiles]()
	require.NoError(t, err)
	assert.Equal(t, "relevant_files", rs.Name)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rs.Schema, &doc))
	assert.Equal(t, "object", doc["type"])
	assert.NotContains(t, doc, "$schema")

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "file_paths")
	assert.Contains(t, props, "note")
	assert.Equal(t, []any{"file_paths"}, doc["required"])
}

func TestRequestMessages(t *testing.T) {
	req := Request{
		Input:   "next",
		History: []Message{{Role: RoleUser, Content: "first"}, {Role: RoleAssistant, Content: "reply"}},
	}

	msgs := req.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Message{Role: RoleUser, Content: "next"}, msgs[2])
	assert.Len(t, req.History, 2)
}
