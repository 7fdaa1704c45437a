package cmd

import (
	"sync"

	"github.com/dm-vev/claimguard/guard/cube"
	"github.com/google/uuid"
)

// Selections tracks the two claim corners each player has selected, usually
// by clicking blocks with a selection tool. The zero value is ready for use.
type Selections struct {
	mu sync.Mutex
	m  map[uuid.UUID]*selection
}

type selection struct {
	first, second cube.Pos
	has           [2]bool
}

// Select records a corner for the actor passed. The first call sets the
// first corner, the second call the opposite one; further calls start a new
// selection from the position passed.
func (s *Selections) Select(actor uuid.UUID, pos cube.Pos) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[uuid.UUID]*selection)
	}
	sel, ok := s.m[actor]
	if !ok || sel.has[1] {
		s.m[actor] = &selection{first: pos, has: [2]bool{true, false}}
		return
	}
	sel.second, sel.has[1] = pos, true
}

// Bounds returns the box spanned by the actor's two selected corners. The
// bool returned is false while the selection is incomplete.
func (s *Selections) Bounds(actor uuid.UUID) (cube.BBox, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.m[actor]
	if !ok || !sel.has[0] || !sel.has[1] {
		return cube.BBox{}, false
	}
	return cube.Box(sel.first, sel.second), true
}

// Clear discards the selection of the actor passed.
func (s *Selections) Clear(actor uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, actor)
}
