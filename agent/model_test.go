package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/pad"
)

func TestStreamToContentRecordsCall(t *testing.T) {
	model := newScriptedModel([]ai.Chunk{
		ai.TextChunk("Hel"),
		ai.TextChunk("lo "),
		ai.TextChunk("there"),
		ai.MetadataChunk(ai.CompletionMetadata{InputTokens: 100, OutputTokens: 30, FinishReason: ai.FinishStop}),
	})
	ac := New(model, "hi",
		WithLogger(quietLogger()),
		WithClock(tickingClock()),
		WithModels(map[ai.ModelSlot]string{ai.SlotCore: "m-core"}),
		WithBasePrompt("You work on steward."),
	)

	require.NoError(t, ac.StreamToContent(context.Background(), ContentRequest{}))

	node := ac.Root().LastChild()
	require.NotNil(t, node)
	assert.Equal(t, "Hello there", node.Text())

	calls := node.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "m-core", calls[0].ModelID)
	assert.Equal(t, 100, calls[0].InputTokens)
	assert.Equal(t, 30, calls[0].OutputTokens)
	assert.Equal(t, ai.FinishStop, calls[0].FinishReason)
	assert.Positive(t, calls[0].Duration())

	req := model.calls()[0]
	assert.Equal(t, "hi", req.Input)
	assert.Equal(t, "You work on steward.\n\n"+DefaultSystemPrompt, req.SystemPrompt)
}

func TestStreamToContentSystemPrompt(t *testing.T) {
	model := newScriptedModel(text("a"), text("b"))
	ac := New(model, "hi", WithLogger(quietLogger()))

	empty := ""
	require.NoError(t, ac.StreamToContent(context.Background(), ContentRequest{SystemPrompt: &empty}))
	custom := "Be brief."
	require.NoError(t, ac.StreamToContent(context.Background(), ContentRequest{SystemPrompt: &custom, Input: "override"}))

	calls := model.calls()
	assert.Equal(t, "", calls[0].SystemPrompt)
	assert.Equal(t, "Be brief.", calls[1].SystemPrompt)
	assert.Equal(t, "override", calls[1].Input)
	assert.Len(t, ac.Root().Children(), 2)
}

func TestStreamChunksMetadataWithoutCall(t *testing.T) {
	ac := New(newScriptedModel(), "hi", WithLogger(quietLogger()))
	node := ac.Root().NewChild()
	ac.recordUsage(node, ai.MetadataChunk(ai.CompletionMetadata{OutputTokens: 5}))
	require.Len(t, node.Calls(), 1)
	assert.Equal(t, 5, node.LastCall().OutputTokens)
}

func TestStreamChunksCancelledOpen(t *testing.T) {
	model := newScriptedModel()
	model.errs[0] = context.Canceled
	ac := New(model, "hi", WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var got error
	for _, err := range ac.StreamChunks(ctx, ChunkRequest{}) {
		got = err
	}
	assert.ErrorIs(t, got, context.Canceled)
}

func TestObserveFilesOnce(t *testing.T) {
	reader := newCountingReader(map[string]string{"main.go": "package main"})
	ac := New(newScriptedModel(), "hi", WithLogger(quietLogger()), WithFileReader(reader))

	ac.ObserveFilePaths("main.go", "gone.go")
	ac.ObserveFilePaths("main.go")

	assert.Equal(t, 1, reader.reads["main.go"])
	obs := ac.Observations()
	require.Len(t, obs, 3)
	assert.Equal(t, filesHeader, obs[0].Content)
	assert.Equal(t, "\n```path=\"main.go\"\npackage main\n```\n", obs[1].Content)
	assert.Equal(t, map[string]string{"main.go": "package main"}, ac.ObservedFiles())

	// The unreadable file stays pending and is retried.
	assert.Equal(t, 2, reader.reads["gone.go"])
}

func TestObserveFilesSelectsGlobPads(t *testing.T) {
	pads := pad.NewMemoryStore(
		pad.Pad{ID: "go", Title: "Go", Content: "gofmt", Criteria: &pad.Criteria{Type: pad.CriteriaGlob, Glob: "*.go"}},
		pad.Pad{ID: "py", Title: "Python", Content: "black", Criteria: &pad.Criteria{Type: pad.CriteriaGlob, Glob: "*.py"}},
	)
	reader := newCountingReader(map[string]string{"cmd/app/main.go": "package main"})
	ac := New(newScriptedModel(), "hi", WithLogger(quietLogger()), WithFileReader(reader), WithPads(pads))

	ac.ObserveFilePaths("cmd/app/main.go")
	assert.Equal(t, []string{"go"}, ac.PadIDs())
}

func TestPromptRendersPadsOnce(t *testing.T) {
	pads := pad.NewMemoryStore(pad.Pad{ID: "style", Title: "Style", Content: "Use tabs."})
	ac := New(newScriptedModel(), "hello", WithLogger(quietLogger()), WithPads(pads))
	assert.Equal(t, "hello", ac.Prompt())

	ac.Observe("note", nil)
	ac.AddPadIDs("style")
	assert.Equal(t,
		"note\n\n"+rulesHeader+"<pad title=\"Style\">\nUse tabs.\n</pad>\n"+rulesFooter+"hello",
		ac.Prompt())
	assert.Equal(t, "note\n\n"+rulesFooter+"hello", ac.Prompt())
	assert.Equal(t, []string{"style"}, ac.UsedPadIDs())
}

func TestPromptSkipsPadsUsedEarlier(t *testing.T) {
	pads := pad.NewMemoryStore(pad.Pad{ID: "style", Title: "Style", Content: "Use tabs."})
	ac := New(newScriptedModel(), "hello", WithPads(pads), WithPadIDs("style"), WithUsedPadIDs("style"))
	assert.Equal(t, "hello", ac.Prompt())
}

type relevantFiles struct {
	FilePaths []string `json:"file_paths"`
}

func TestStreamStructured(t *testing.T) {
	model := newScriptedModel(text(`{"file_paths": ["a.go",`, ` "b.go"]}`))
	ac := New(model, "find files", WithLogger(quietLogger()),
		WithModels(map[ai.ModelSlot]string{ai.SlotCore: "m-core", ai.SlotRouter: "m-router"}))

	var got []relevantFiles
	for v, err := range StreamStructured[relevantFiles](context.Background(), ac, StructuredRequest{SystemPrompt: "Pick files."}) {
		require.NoError(t, err)
		got = append(got, v)
	}
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a.go"}, got[0].FilePaths)
	assert.Equal(t, []string{"a.go", "b.go"}, got[1].FilePaths)

	req := model.calls()[0]
	assert.Equal(t, "m-router", req.ModelID)
	require.NotNil(t, req.OutputSchema)
	assert.Equal(t, "relevant_files", req.OutputSchema.Name)
	assert.Empty(t, ac.Root().Calls())
}

func TestStreamStructuredErrorChunk(t *testing.T) {
	model := newScriptedModel([]ai.Chunk{ai.TextChunk(`{"file_paths": [`), ai.ErrorChunk("overloaded")})
	ac := New(model, "find files", WithLogger(quietLogger()))

	var last error
	for _, err := range StreamStructured[relevantFiles](context.Background(), ac, StructuredRequest{}) {
		last = err
	}
	var me *ai.ModelError
	require.ErrorAs(t, last, &me)
	assert.Contains(t, last.Error(), "overloaded")
}
