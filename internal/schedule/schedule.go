// Package schedule coalesces rapid edits into a single analysis pass.
package schedule

import (
	"sync"
	"time"

	"github.com/verte-zerg/quill/internal/model"
)

// DefaultQuietWindow is how long edits must pause before analysis runs.
const DefaultQuietWindow = 500 * time.Millisecond

// Analyzer is the analysis the scheduler defers.
type Analyzer interface {
	Analyze(text string, dismissed model.DismissedSet) model.AnalysisResult
}

// Delivery is invoked with the analyzed text and its result.
type Delivery func(text string, result model.AnalysisResult)

// Scheduler debounces analysis requests. Only one timer is tracked at a
// time, and the delivery callback never runs while the scheduler lock is held.
//
// All methods are safe for concurrent use.
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	quiet    time.Duration
	analyzer Analyzer
	deliver  Delivery
	timer    Timer
	seq      uint64
}

// New creates a scheduler. A zero quiet window uses DefaultQuietWindow and a
// nil clock uses SystemClock.
func New(analyzer Analyzer, clock Clock, quiet time.Duration, deliver Delivery) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	return &Scheduler{
		clock:    clock,
		quiet:    quiet,
		analyzer: analyzer,
		deliver:  deliver,
	}
}

// QuietWindow returns the configured debounce window.
func (s *Scheduler) QuietWindow() time.Duration {
	return s.quiet
}

// Schedule replaces any pending pass with one over text, to run after the
// quiet window. The dismissed set is captured alongside the text.
func (s *Scheduler) Schedule(text string, dismissed model.DismissedSet) {
	captured := dismissed.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.seq++
	current := s.seq
	s.timer = s.clock.AfterFunc(s.quiet, func() {
		s.mu.Lock()
		if s.seq != current {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		result := s.analyzer.Analyze(text, captured)

		// A newer request made while analyzing supersedes this result.
		s.mu.Lock()
		stale := s.seq != current
		s.mu.Unlock()
		if stale {
			return
		}
		s.emit(text, result)
	})
}

// Cancel drops the pending pass, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.seq++
}

// Pending reports whether a pass is waiting for its quiet window.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// AnalyzeImmediate cancels the pending pass, analyzes text now and delivers
// the result before returning it.
func (s *Scheduler) AnalyzeImmediate(text string, dismissed model.DismissedSet) model.AnalysisResult {
	s.Cancel()
	result := s.analyzer.Analyze(text, dismissed)
	s.emit(text, result)
	return result
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) emit(text string, result model.AnalysisResult) {
	if s.deliver != nil {
		s.deliver(text, result)
	}
}
