package steward

import "strings"

// ChunkType identifies the kind of payload a Chunk carries.
type ChunkType string

const (
	ChunkText     ChunkType = "text"
	ChunkError    ChunkType = "error"
	ChunkMetadata ChunkType = "completion-metadata"
)

// FinishReason describes why a model stopped producing output.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishMaxTokens FinishReason = "max_tokens"
	FinishOther     FinishReason = "other"
	FinishUnknown   FinishReason = "unknown"
)

// NormalizeFinishReason maps provider specific stop reasons onto FinishReason.
func NormalizeFinishReason(reason string) FinishReason {
	switch strings.ToLower(reason) {
	case "stop", "end_turn", "stop_sequence", "tool_use", "tool_calls":
		return FinishStop
	case "max_tokens", "length", "max_output_tokens":
		return FinishMaxTokens
	case "":
		return FinishUnknown
	default:
		return FinishOther
	}
}

// CompletionMetadata is reported once at the end of a model call.
type CompletionMetadata struct {
	InputTokens       int          `json:"inputTokens"`
	CachedInputTokens int          `json:"cachedInputTokens"`
	OutputTokens      int          `json:"outputTokens"`
	FinishReason      FinishReason `json:"finishReason"`
}

// Chunk is one increment of a model's streamed reply.
// Exactly one of Text, Message or Metadata is meaningful, selected by Type.
type Chunk struct {
	Type     ChunkType           `json:"type"`
	Text     string              `json:"text,omitempty"`
	Message  string              `json:"message,omitempty"`
	Metadata *CompletionMetadata `json:"metadata,omitempty"`
}

// TextChunk creates a text chunk.
func TextChunk(text string) Chunk {
	return Chunk{Type: ChunkText, Text: text}
}

// ErrorChunk creates an error chunk carrying a human readable message.
func ErrorChunk(message string) Chunk {
	return Chunk{Type: ChunkError, Message: message}
}

// MetadataChunk creates a completion-metadata chunk.
func MetadataChunk(md CompletionMetadata) Chunk {
	return Chunk{Type: ChunkMetadata, Metadata: &md}
}

// IsText reports whether the chunk carries text.
func (c Chunk) IsText() bool { return c.Type == ChunkText }

// IsError reports whether the chunk reports a model error.
func (c Chunk) IsError() bool { return c.Type == ChunkError }

// IsMetadata reports whether the chunk carries completion metadata.
func (c Chunk) IsMetadata() bool { return c.Type == ChunkMetadata }
