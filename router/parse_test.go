package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetersoncode/steward/pad"
)

func TestParse(t *testing.T) {
	t.Run("rationale only selects no tool", func(t *testing.T) {
		d := Parse("<rationale>none needed</rationale>")
		assert.Equal(t, "none needed", d.Rationale)
		assert.True(t, d.NoTool())
		assert.Empty(t, d.Args)
		assert.Empty(t, d.PadIndices)
	})

	t.Run("tool with args", func(t *testing.T) {
		d := Parse(`<rationale>r</rationale><tool>search_codebase</tool><args><arg name="query">foo</arg></args>`)
		assert.Equal(t, "r", d.Rationale)
		assert.Equal(t, "search_codebase", d.Tool)
		assert.False(t, d.NoTool())
		assert.Equal(t, map[string]string{"query": "foo"}, d.Args)
	})

	t.Run("malformed reply", func(t *testing.T) {
		d := Parse("I think you should search the codebase.")
		assert.Equal(t, FailedRationale, d.Rationale)
		assert.True(t, d.NoTool())
		assert.Empty(t, d.PadIndices)
	})

	t.Run("empty reply", func(t *testing.T) {
		d := Parse("")
		assert.Equal(t, FailedRationale, d.Rationale)
	})
}

func TestParseNoToolSpellings(t *testing.T) {
	for _, reply := range []string{
		"<tool>none</tool>",
		"<tool>None</tool>",
		"<tool>NONE</tool>",
		"<tool></tool>",
		"<tool> </tool>",
	} {
		t.Run(reply, func(t *testing.T) {
			d := Parse(reply)
			assert.True(t, d.NoTool())
			assert.NotEqual(t, FailedRationale, d.Rationale)
		})
	}
}

func TestParseMultilineReply(t *testing.T) {
	reply := `Sure.
<rationale>The user wants
to edit a file</rationale>
<tool>edit_codebase</tool>
<args>
    <arg name="instructions">rename foo
to bar</arg>
    <arg name="path"> main.go </arg>
</args>
<pad-id>2</pad-id>
<pad-id> 0 </pad-id>`

	d := Parse(reply)
	assert.Equal(t, "The user wants\nto edit a file", d.Rationale)
	assert.Equal(t, "edit_codebase", d.Tool)
	assert.Equal(t, map[string]string{
		"instructions": "rename foo\nto bar",
		"path":         "main.go",
	}, d.Args)
	assert.Equal(t, []int{2, 0}, d.PadIndices)
}

func TestParseArgsOnlyFromArgsBlock(t *testing.T) {
	d := Parse(`<arg name="stray">x</arg><tool>t</tool><args><arg name="a">1</arg><arg name="">skip</arg><arg name="b">2</arg></args>`)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, d.Args)
}

func TestParseDropsArgsWithoutTool(t *testing.T) {
	d := Parse(`<rationale>r</rationale><args><arg name="a">1</arg></args>`)
	assert.True(t, d.NoTool())
	assert.Nil(t, d.Args)
}

func TestParsePadsOnly(t *testing.T) {
	d := Parse("<pad-id>1</pad-id><pad-id>abc</pad-id>")
	assert.NotEqual(t, FailedRationale, d.Rationale)
	assert.Equal(t, []int{1}, d.PadIndices)
	assert.Equal(t, []string{"abc"}, d.InvalidPads)
}

func TestSelectPads(t *testing.T) {
	candidates := []pad.Pad{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}
	d := Decision{PadIndices: []int{1, 5, -1, 0}, InvalidPads: []string{"x"}}

	selected, invalid := d.SelectPads(candidates)
	require.Len(t, selected, 2)
	assert.Equal(t, "b", selected[0].ID)
	assert.Equal(t, "a", selected[1].ID)
	assert.Equal(t, []string{"x", "5", "-1"}, invalid)
}
