package pad

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(
		Pad{ID: "b", Title: "Go style", Criteria: &Criteria{Type: CriteriaGlob, Glob: "*.go"}},
		Pad{ID: "a", Title: "Testing", Criteria: &Criteria{Type: CriteriaInstruction, Instruction: "when writing tests"}},
		Pad{ID: "c", Title: "Notes"},
	)

	p, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Testing", p.Title)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	glob := s.WithGlob()
	require.Len(t, glob, 1)
	assert.Equal(t, "b", glob[0].ID)

	instr := s.WithInstruction()
	require.Len(t, instr, 1)
	assert.Equal(t, "a", instr[0].ID)

	all := s.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	s.Put(Pad{ID: "c", Title: "Updated"})
	p, _ = s.Get("c")
	assert.Equal(t, "Updated", p.Title)
}

func TestCriteria(t *testing.T) {
	assert.NoError(t, Criteria{Type: CriteriaGlob, Glob: "*.go"}.Validate())
	assert.Error(t, Criteria{Type: CriteriaGlob}.Validate())
	assert.Error(t, Criteria{Type: CriteriaInstruction}.Validate())
	assert.Error(t, Criteria{Type: "regex", Glob: "x"}.Validate())

	assert.Equal(t, "*.go", Criteria{Type: CriteriaGlob, Glob: "*.go"}.String())
	assert.Equal(t, "use for SQL", Criteria{Type: CriteriaInstruction, Instruction: "use for SQL"}.String())
}

const goPad = `---
title: Go conventions
selection_criteria:
  type: glob
  glob_pattern: "*.go"
---
Return errors, do not panic.
`

func TestParse(t *testing.T) {
	p, err := Parse("go-conventions", []byte(goPad))
	require.NoError(t, err)
	assert.Equal(t, "go-conventions", p.ID)
	assert.Equal(t, "Go conventions", p.Title)
	assert.Equal(t, "Return errors, do not panic.", p.Content)
	assert.True(t, p.HasGlob())
	assert.Equal(t, "*.go", p.Criteria.Glob)

	_, err = Parse("x", []byte("no front matter"))
	assert.Error(t, err)

	_, err = Parse("x", []byte("---\ntitle: x\nselection_criteria:\n  type: glob\n---\nbody"))
	assert.Error(t, err)
}

func TestOpenDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.md"), []byte(goPad), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("oops"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(goPad), 0o644))

	s, err := OpenDir(dir)
	require.NoError(t, err)

	all := s.All()
	require.Len(t, all, 1)
	assert.Equal(t, "go", all[0].ID)

	_, err = OpenDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestDirStoreWatch(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenDir(dir, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	assert.Empty(t, s.All())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.md"), []byte(goPad), 0o644))

	assert.Eventually(t, func() bool {
		_, ok := s.Get("go")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
}
