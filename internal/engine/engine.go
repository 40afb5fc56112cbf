// Package engine owns one editing session: its text, dismissed patterns,
// undo history and debounced analysis.
package engine

import (
	"sync"
	"time"

	"github.com/verte-zerg/quill/internal/analysis"
	"github.com/verte-zerg/quill/internal/correction"
	"github.com/verte-zerg/quill/internal/history"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/schedule"
)

// Analyzer is the analysis pass the engine runs.
type Analyzer interface {
	Analyze(text string, dismissed model.DismissedSet) model.AnalysisResult
}

// Options configures a session.
type Options struct {
	// QuietWindow defaults to schedule.DefaultQuietWindow.
	QuietWindow time.Duration
	// HistoryCapacity defaults to history.DefaultCapacity.
	HistoryCapacity int
	// Clock defaults to schedule.SystemClock.
	Clock schedule.Clock
	// OnResult receives every result that becomes current.
	OnResult func(text string, result model.AnalysisResult)
}

// Engine is a single editing session. Methods are safe for concurrent use;
// OnResult is never called while the engine lock is held.
type Engine struct {
	mu        sync.Mutex
	analyzer  Analyzer
	scheduler *schedule.Scheduler
	history   *history.Stack
	dismissed model.DismissedSet
	text      string
	result    model.AnalysisResult
	onResult  func(string, model.AnalysisResult)
}

// New creates an empty session.
func New(an Analyzer, opts Options) *Engine {
	e := &Engine{
		analyzer:  an,
		history:   history.New(opts.HistoryCapacity),
		dismissed: model.DismissedSet{},
		result:    analysis.EmptyResult(),
		onResult:  opts.OnResult,
	}
	e.scheduler = schedule.New(an, opts.Clock, opts.QuietWindow, e.deliverScheduled)
	return e
}

// Schedule records text as current and queues a debounced analysis of it.
func (e *Engine) Schedule(text string) {
	e.mu.Lock()
	e.text = text
	dismissed := e.dismissed.Clone()
	e.mu.Unlock()

	e.scheduler.Schedule(text, dismissed)
}

// AnalyzeImmediate records text as current, cancels any queued pass and
// analyzes it now.
func (e *Engine) AnalyzeImmediate(text string) model.AnalysisResult {
	e.mu.Lock()
	e.text = text
	dismissed := e.dismissed.Clone()
	e.mu.Unlock()

	return e.scheduler.AnalyzeImmediate(text, dismissed)
}

// Cancel drops a queued analysis pass.
func (e *Engine) Cancel() {
	e.scheduler.Cancel()
}

// Pending reports whether a debounced pass is queued.
func (e *Engine) Pending() bool {
	return e.scheduler.Pending()
}

// ApplyCorrection replaces the issue span in the current text. On success
// the state being left is pushed to history. On failure the text is kept and
// its result refreshed.
func (e *Engine) ApplyCorrection(issue model.Issue, corr model.Correction) correction.Outcome {
	e.scheduler.Cancel()

	e.mu.Lock()
	prior := model.HistoryEntry{Text: e.text, Result: e.result}
	out := correction.ApplyFromIssue(e.analyzer, e.text, issue, corr, e.dismissed)
	if out.Success {
		e.history.Push(prior)
	}
	e.text = out.Text
	e.result = out.Result
	cb := e.onResult
	e.mu.Unlock()

	notify(cb, out.Text, out.Result)
	return out
}

// ApplyAll applies a batch of edits with a single re-analysis and a single
// history entry.
func (e *Engine) ApplyAll(edits []correction.Edit) (correction.BatchOutcome, error) {
	e.scheduler.Cancel()

	e.mu.Lock()
	prior := model.HistoryEntry{Text: e.text, Result: e.result}
	out, err := correction.ApplyMultiple(e.analyzer, e.text, edits, e.dismissed)
	if err == nil && out.Applied > 0 {
		e.history.Push(prior)
	}
	e.text = out.Text
	e.result = out.Result
	cb := e.onResult
	e.mu.Unlock()

	notify(cb, out.Text, out.Result)
	return out, err
}

// PreviewCorrection returns the current issues with positions shifted as if
// corr had been applied. The list is an unverified estimate and does not
// change the session.
func (e *Engine) PreviewCorrection(issue model.Issue, corr model.Correction) []model.Issue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return correction.AdjustIssuePositions(e.result.Issues, issue.StartIndex, issue.EndIndex,
		correction.Delta(issue.OriginalText, corr.Text))
}

// Undo restores the most recent snapshot as current. It returns
// history.ErrNothingToUndo when there is none.
func (e *Engine) Undo() (model.HistoryEntry, error) {
	e.mu.Lock()
	entry, err := e.history.Pop()
	if err != nil {
		e.mu.Unlock()
		return model.HistoryEntry{}, err
	}
	e.text = entry.Text
	e.result = entry.Result
	cb := e.onResult
	e.mu.Unlock()

	e.scheduler.Cancel()
	notify(cb, entry.Text, entry.Result)
	return entry, nil
}

// CanUndo reports whether Undo would succeed.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// ClearHistory drops every undo snapshot.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Clear()
}

// History returns the undo snapshots, oldest first.
func (e *Engine) History() []model.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Entries()
}

// RestoreHistory replaces the undo snapshots.
func (e *Engine) RestoreHistory(entries []model.HistoryEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Restore(entries)
}

// DismissIssue suppresses every occurrence of the issue's rule and text and
// re-analyzes the current text. Dismissal is not recorded in history.
func (e *Engine) DismissIssue(issue model.Issue) model.AnalysisResult {
	e.mu.Lock()
	e.dismissed[issue.Key()] = struct{}{}
	text := e.text
	e.mu.Unlock()

	return e.AnalyzeImmediate(text)
}

// RestoreDismissed adds previously dismissed patterns without re-analyzing.
func (e *Engine) RestoreDismissed(keys []model.DismissedPatternKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, k := range keys {
		e.dismissed[model.NewDismissedPatternKey(k.Rule, k.Text)] = struct{}{}
	}
}

// Dismissed returns a copy of the dismissed patterns.
func (e *Engine) Dismissed() model.DismissedSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dismissed.Clone()
}

// Result returns the current result.
func (e *Engine) Result() model.AnalysisResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyResult(e.result)
}

// Text returns the current text.
func (e *Engine) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// Reset clears text, dismissed patterns and history, cancels any queued pass
// and delivers the empty result.
func (e *Engine) Reset() {
	e.scheduler.Cancel()

	e.mu.Lock()
	e.text = ""
	e.dismissed = model.DismissedSet{}
	e.history.Clear()
	e.result = analysis.EmptyResult()
	result := e.result
	cb := e.onResult
	e.mu.Unlock()

	notify(cb, "", result)
}

// deliverScheduled accepts a result only if its text is still current.
func (e *Engine) deliverScheduled(text string, result model.AnalysisResult) {
	e.mu.Lock()
	if text != e.text {
		e.mu.Unlock()
		return
	}
	e.result = result
	cb := e.onResult
	e.mu.Unlock()

	notify(cb, text, result)
}

func notify(cb func(string, model.AnalysisResult), text string, result model.AnalysisResult) {
	if cb != nil {
		cb(text, copyResult(result))
	}
}

func copyResult(r model.AnalysisResult) model.AnalysisResult {
	out := r
	out.Issues = make([]model.Issue, len(r.Issues))
	copy(out.Issues, r.Issues)
	return out
}
