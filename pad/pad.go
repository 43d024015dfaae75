// Package pad models reusable context snippets ("pads") and where they come
// from. A pad is selected for a turn either because a file in play matches
// its glob, or because the router judged its instruction relevant.
package pad

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a pad id is unknown.
var ErrNotFound = errors.New("pad: not found")

// CriteriaType discriminates selection criteria.
type CriteriaType string

const (
	CriteriaGlob        CriteriaType = "glob"
	CriteriaInstruction CriteriaType = "selection_instruction"
)

// Criteria decides when a pad is pulled into a turn.
type Criteria struct {
	Type        CriteriaType `yaml:"type" json:"type"`
	Glob        string       `yaml:"glob_pattern,omitempty" json:"glob_pattern,omitempty"`
	Instruction string       `yaml:"selection_instruction,omitempty" json:"selection_instruction,omitempty"`
}

// String returns the criterion as shown to the router.
func (c Criteria) String() string {
	if c.Type == CriteriaGlob {
		return c.Glob
	}
	return c.Instruction
}

// Validate checks the criterion is complete for its type.
func (c Criteria) Validate() error {
	switch c.Type {
	case CriteriaGlob:
		if c.Glob == "" {
			return fmt.Errorf("pad: glob criteria without glob_pattern")
		}
	case CriteriaInstruction:
		if c.Instruction == "" {
			return fmt.Errorf("pad: instruction criteria without selection_instruction")
		}
	default:
		return fmt.Errorf("pad: unknown criteria type %q", c.Type)
	}
	return nil
}

// Pad is a named context snippet.
type Pad struct {
	ID       string    `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Content  string    `yaml:"-" json:"content"`
	Complete bool      `yaml:"complete" json:"complete"`
	Type     string    `yaml:"type,omitempty" json:"type,omitempty"`
	FilePath string    `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	Criteria *Criteria `yaml:"selection_criteria,omitempty" json:"selection_criteria,omitempty"`
}

// HasGlob reports whether the pad is selected by file glob.
func (p Pad) HasGlob() bool {
	return p.Criteria != nil && p.Criteria.Type == CriteriaGlob
}

// HasInstruction reports whether the pad is selected by the router.
func (p Pad) HasInstruction() bool {
	return p.Criteria != nil && p.Criteria.Type == CriteriaInstruction
}

// Store supplies pads to agent contexts. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the pad with id.
	Get(id string) (Pad, bool)
	// WithGlob returns pads selected by file glob, ordered by id.
	WithGlob() []Pad
	// WithInstruction returns pads the router may select, ordered by id.
	WithInstruction() []Pad
}
