package content

import (
	"testing"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []*Node) []ID {
	out := make([]ID, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func TestNodeLoading(t *testing.T) {
	t.Run("fresh node is loading", func(t *testing.T) {
		tree := NewTree()
		n := tree.Root().NewChild()
		assert.True(t, n.IsLoading())
	})

	t.Run("non-empty text ends loading", func(t *testing.T) {
		n := NewTree().Root().NewChild()
		n.AppendChunk(ai.TextChunk(""))
		assert.True(t, n.IsLoading())

		n.AppendChunk(ai.TextChunk("hi"))
		assert.False(t, n.IsLoading())
	})

	t.Run("children data or errors end loading", func(t *testing.T) {
		tree := NewTree()

		withChild := tree.Root().NewChild()
		withChild.NewChild()
		assert.False(t, withChild.IsLoading())

		withData := tree.Root().NewChild()
		withData.SetData([]string{"a.go"})
		assert.False(t, withData.IsLoading())

		withErr := tree.Root().NewChild()
		withErr.AppendChunk(ai.ErrorChunk("rate limited"))
		assert.False(t, withErr.IsLoading())
	})

	t.Run("stays loaded once text seen", func(t *testing.T) {
		n := NewTree().Root().NewChild()
		n.SetText("x")
		require.False(t, n.IsLoading())
		n.SetText("")
		assert.False(t, n.IsLoading())
	})
}

func TestAppendChunkCoalescesText(t *testing.T) {
	n := NewTree().Root()
	n.AppendChunk(ai.TextChunk("Hel"))
	n.AppendChunk(ai.TextChunk("lo"))
	n.AppendChunk(ai.MetadataChunk(ai.CompletionMetadata{OutputTokens: 2}))

	assert.Equal(t, "Hello", n.DirectText())
	assert.Empty(t, n.Errors())
}

func TestPromoteToLast(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	a := root.NewChild()
	b := root.NewChild()
	c := root.NewChild()

	assert.Equal(t, []ID{a.ID(), b.ID(), c.ID()}, ids(root.Children()))
	assert.Equal(t, c.ID(), root.LastChild().ID())

	a.PromoteToLast()
	assert.Equal(t, []ID{b.ID(), c.ID(), a.ID()}, ids(root.Children()))
	assert.Equal(t, a.ID(), root.LastChild().ID())

	a.PromoteToLast()
	assert.Equal(t, []ID{b.ID(), c.ID(), a.ID()}, ids(root.Children()))

	root.PromoteToLast()
	assert.Nil(t, root.Parent())
}

func TestAddChildAttachesDetachedNode(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	first := root.NewChild()

	detached := tree.NewNode()
	assert.Nil(t, detached.Parent())
	assert.Len(t, root.Children(), 1)

	root.AddChild(detached)
	assert.Equal(t, root.ID(), detached.Parent().ID())
	assert.Equal(t, []ID{first.ID(), detached.ID()}, ids(root.Children()))

	root.AddChild(first)
	assert.Equal(t, []ID{detached.ID(), first.ID()}, ids(root.Children()))
}

func TestDeepestAndText(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	assert.Equal(t, root.ID(), root.Deepest().ID())

	a := root.NewChild()
	a.SetText("a")
	b := a.NewChild()
	b.SetText("b")
	c := root.NewChild()
	c.SetText("c")

	assert.Equal(t, c.ID(), root.Deepest().ID())
	assert.Equal(t, "abc", root.Text())

	d := c.NewChild()
	assert.Equal(t, d.ID(), root.Deepest().ID())
}

func TestTextFallsBackToData(t *testing.T) {
	n := NewTree().Root()
	n.SetData(struct{ Files []string }{Files: []string{"a.go"}})
	assert.Equal(t, "{Files:[a.go]}", n.Text())
}

type relevantFiles struct {
	FilePaths []string `json:"file_paths"`
}

func TestDataOf(t *testing.T) {
	tree := NewTree()

	direct := tree.Root().NewChild()
	direct.SetData(relevantFiles{FilePaths: []string{"a.go"}})
	got, err := DataOf[relevantFiles](direct)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, got.FilePaths)

	converted := tree.Root().NewChild()
	converted.SetData(map[string]any{"file_paths": []any{"b.go"}})
	got, err = DataOf[relevantFiles](converted)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.go"}, got.FilePaths)

	empty := tree.Root().NewChild()
	_, err = DataOf[relevantFiles](empty)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCallMetadata(t *testing.T) {
	n := NewTree().Root()
	assert.Nil(t, n.LastCall())

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := n.AddCall(CallMetadata{ModelID: "builtin::openai::gpt-4.1", StartedAt: start})
	assert.Equal(t, ai.FinishUnknown, rec.FinishReason)
	assert.Equal(t, time.Duration(-1), rec.Duration())

	rec.Finish(ai.CompletionMetadata{InputTokens: 100, OutputTokens: 30, FinishReason: ai.FinishStop}, start.Add(2*time.Second))
	require.Len(t, n.Calls(), 1)
	last := n.LastCall()
	assert.Equal(t, 100, last.InputTokens)
	assert.Equal(t, 30, last.OutputTokens)
	assert.Equal(t, ai.FinishStop, last.FinishReason)
	assert.Equal(t, 2*time.Second, last.Duration())

	unset := n.AddCall(CallMetadata{})
	assert.Equal(t, UnsetModelID, unset.ModelID)
}

func TestSnapshot(t *testing.T) {
	tree := NewTree()
	root := tree.Root()
	tool := root.NewChild()
	tool.SetStep(&ai.ToolCallStep{ToolID: ai.ToolID{Package: "steward", Name: "search_codebase"}})
	tool.SetTag(RenderTag{ToolID: ai.ToolID{Package: "steward", Name: "search_codebase"}, Icon: "search"})
	tool.AppendChunk(ai.TextChunk("found"))
	root.NewChild()

	snap := root.Snapshot()
	require.Len(t, snap.Children, 2)
	assert.Equal(t, ai.StepToolCall, snap.Children[0].StepKind)
	assert.Equal(t, "found", snap.Children[0].Text)
	require.NotNil(t, snap.Children[0].Tag)
	assert.Equal(t, "search", snap.Children[0].Tag.Icon)
	assert.True(t, snap.Children[1].Loading)
	assert.Nil(t, snap.Children[1].Tag)
}
