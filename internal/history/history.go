// Package history keeps bounded undo snapshots for an editing session.
package history

import (
	"errors"

	"github.com/verte-zerg/quill/internal/model"
)

// DefaultCapacity is the number of snapshots kept when no capacity is given.
const DefaultCapacity = 50

// ErrNothingToUndo is returned by Pop on an empty stack.
var ErrNothingToUndo = errors.New("nothing to undo")

// Stack is a bounded LIFO of snapshots. Pushing past capacity evicts the
// oldest entry. A Stack is not safe for concurrent use.
type Stack struct {
	entries  []model.HistoryEntry
	capacity int
}

// New creates a stack. A non-positive capacity uses DefaultCapacity.
func New(capacity int) *Stack {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Stack{capacity: capacity}
}

// Push records a snapshot taken before a change.
func (s *Stack) Push(entry model.HistoryEntry) {
	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.capacity; over > 0 {
		// Copy down so the evicted entries can be collected.
		n := copy(s.entries, s.entries[over:])
		clear(s.entries[n:])
		s.entries = s.entries[:n]
	}
}

// Pop removes and returns the most recent snapshot.
func (s *Stack) Pop() (model.HistoryEntry, error) {
	if len(s.entries) == 0 {
		return model.HistoryEntry{}, ErrNothingToUndo
	}
	last := len(s.entries) - 1
	entry := s.entries[last]
	s.entries[last] = model.HistoryEntry{}
	s.entries = s.entries[:last]
	return entry, nil
}

// CanUndo reports whether Pop would succeed.
func (s *Stack) CanUndo() bool {
	return len(s.entries) > 0
}

// Len returns the number of stored snapshots.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Capacity returns the maximum number of stored snapshots.
func (s *Stack) Capacity() int {
	return s.capacity
}

// Clear drops every snapshot.
func (s *Stack) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
}

// Entries returns a copy of the snapshots, oldest first.
func (s *Stack) Entries() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Restore replaces the stack contents with entries, oldest first, keeping
// only the newest ones that fit.
func (s *Stack) Restore(entries []model.HistoryEntry) {
	s.Clear()
	for _, e := range entries {
		s.Push(e)
	}
}
