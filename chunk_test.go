package steward

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFinishReason(t *testing.T) {
	tests := []struct {
		in   string
		want FinishReason
	}{
		{"stop", FinishStop},
		{"end_turn", FinishStop},
		{"STOP", FinishStop},
		{"tool_calls", FinishStop},
		{"length", FinishMaxTokens},
		{"max_tokens", FinishMaxTokens},
		{"MAX_TOKENS", FinishMaxTokens},
		{"content_filter", FinishOther},
		{"SAFETY", FinishOther},
		{"", FinishUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFinishReason(tt.in))
		})
	}
}

func TestChunkConstructors(t *testing.T) {
	text := TextChunk("hello")
	assert.True(t, text.IsText())
	assert.Equal(t, "hello", text.Text)

	errChunk := ErrorChunk("rate limited")
	assert.True(t, errChunk.IsError())
	assert.Equal(t, "rate limited", errChunk.Message)

	md := MetadataChunk(CompletionMetadata{InputTokens: 100, OutputTokens: 30, FinishReason: FinishStop})
	assert.True(t, md.IsMetadata())
	if assert.NotNil(t, md.Metadata) {
		assert.Equal(t, 100, md.Metadata.InputTokens)
		assert.Equal(t, FinishStop, md.Metadata.FinishReason)
	}
}
