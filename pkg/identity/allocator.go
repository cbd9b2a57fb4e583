// Package identity assigns stable, human-readable billable identifiers:
// small positive integers that survive re-runs without renumbering
// unrelated items, with gaps from removed keys reused before the ceiling
// is raised.
package identity

import (
	"errors"
	"fmt"
)

// ErrExhausted signals that no unused identifier exists within the
// allocation bound. The caller must stop processing the remaining items in
// the batch; identifiers are never wrapped or corrupted.
var ErrExhausted = errors.New("identifier allocation exhausted")

// ExhaustedError carries the offending bound alongside ErrExhausted.
type ExhaustedError struct {
	Bound int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("identifier allocation exhausted: no unused id within bound %d", e.Bound)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrExhausted
}

// State is the persisted allocator snapshot.
type State struct {
	Assignments map[string]int `json:"map"`
	MaxID       int            `json:"maxId"`
	NextID      int            `json:"nextId"`
}

// EmptyState returns the initial allocator state.
func EmptyState() State {
	return State{Assignments: make(map[string]int), MaxID: 0, NextID: 1}
}

// Allocator maps identity keys to stable integers.
type Allocator struct {
	assigned map[string]int
	used     map[int]bool
	maxID    int
}

// NewAllocator restores an allocator from persisted state.
func NewAllocator(state State) *Allocator {
	a := &Allocator{
		assigned: make(map[string]int, len(state.Assignments)),
		used:     make(map[int]bool, len(state.Assignments)),
		maxID:    state.MaxID,
	}
	for key, id := range state.Assignments {
		a.assigned[key] = id
		a.used[id] = true
		if id > a.maxID {
			a.maxID = id
		}
	}
	return a
}

// GetOrCreate returns the identifier assigned to key, allocating the
// smallest unused positive integer when the key is new. The scan is
// bounded by max(totalCount, previous highest assigned id); exceeding it
// returns an ExhaustedError.
//
// An existing assignment is returned unchanged, always.
func (a *Allocator) GetOrCreate(key string, totalCount int) (int, error) {
	if id, ok := a.assigned[key]; ok {
		return id, nil
	}

	bound := totalCount
	if a.maxID > bound {
		bound = a.maxID
	}
	for id := 1; id <= bound; id++ {
		if !a.used[id] {
			a.assigned[key] = id
			a.used[id] = true
			if id > a.maxID {
				a.maxID = id
			}
			return id, nil
		}
	}
	return 0, &ExhaustedError{Bound: bound}
}

// Lookup returns the assignment for key without allocating.
func (a *Allocator) Lookup(key string) (int, bool) {
	id, ok := a.assigned[key]
	return id, ok
}

// Remove drops the assignment for key, freeing its identifier for reuse by
// future keys.
func (a *Allocator) Remove(key string) {
	if id, ok := a.assigned[key]; ok {
		delete(a.assigned, key)
		delete(a.used, id)
	}
}

// ClearAll resets the allocator to its initial empty state.
func (a *Allocator) ClearAll() {
	a.assigned = make(map[string]int)
	a.used = make(map[int]bool)
	a.maxID = 0
}

// Len returns the number of assigned keys.
func (a *Allocator) Len() int {
	return len(a.assigned)
}

// State snapshots the allocator for persistence.
func (a *Allocator) State() State {
	s := State{
		Assignments: make(map[string]int, len(a.assigned)),
		MaxID:       a.maxID,
		NextID:      a.maxID + 1,
	}
	for key, id := range a.assigned {
		s.Assignments[key] = id
	}
	return s
}

// Format renders an identifier zero-padded to the width of the total item
// count, minimum three digits.
func Format(id, totalCount int) string {
	width := len(fmt.Sprintf("%d", totalCount))
	if width < 3 {
		width = 3
	}
	return fmt.Sprintf("%0*d", width, id)
}
