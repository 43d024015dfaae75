package pad

import (
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps pads in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	pads map[string]Pad
}

// NewMemoryStore creates a store holding pads.
func NewMemoryStore(pads ...Pad) *MemoryStore {
	s := &MemoryStore{pads: make(map[string]Pad, len(pads))}
	for _, p := range pads {
		s.pads[p.ID] = p
	}
	return s
}

// Put inserts or replaces a pad.
func (s *MemoryStore) Put(p Pad) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pads[p.ID] = p
}

// Replace swaps the whole set of pads.
func (s *MemoryStore) Replace(pads []Pad) {
	next := make(map[string]Pad, len(pads))
	for _, p := range pads {
		next[p.ID] = p
	}
	s.mu.Lock()
	s.pads = next
	s.mu.Unlock()
}

// Get returns the pad with id.
func (s *MemoryStore) Get(id string) (Pad, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pads[id]
	return p, ok
}

// All returns every pad ordered by id.
func (s *MemoryStore) All() []Pad {
	return s.filter(func(Pad) bool { return true })
}

// WithGlob returns pads selected by file glob.
func (s *MemoryStore) WithGlob() []Pad {
	return s.filter(Pad.HasGlob)
}

// WithInstruction returns pads the router may select.
func (s *MemoryStore) WithInstruction() []Pad {
	return s.filter(Pad.HasInstruction)
}

func (s *MemoryStore) filter(keep func(Pad) bool) []Pad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Pad
	for _, p := range s.pads {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b Pad) int { return strings.Compare(a.ID, b.ID) })
	return out
}
