package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/quill/internal/analysis"
	"github.com/verte-zerg/quill/internal/correction"
	"github.com/verte-zerg/quill/internal/history"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/schedule"
)

type recorder struct {
	texts   []string
	results []model.AnalysisResult
}

func (r *recorder) onResult(text string, result model.AnalysisResult) {
	r.texts = append(r.texts, text)
	r.results = append(r.results, result)
}

func newTestEngine(t *testing.T, capacity int) (*Engine, *schedule.ManualClock, *recorder) {
	t.Helper()
	clock := schedule.NewManualClock()
	rec := &recorder{}
	e := New(analysis.NewDefault(model.AnalysisConfig{}, nil), Options{
		QuietWindow:     500 * time.Millisecond,
		HistoryCapacity: capacity,
		Clock:           clock,
		OnResult:        rec.onResult,
	})
	return e, clock, rec
}

func issueFor(t *testing.T, result model.AnalysisResult, rule model.Rule) model.Issue {
	t.Helper()
	for _, issue := range result.Issues {
		if issue.Rule == rule {
			return issue
		}
	}
	t.Fatalf("expected %s issue, got %+v", rule, result.Issues)
	return model.Issue{}
}

func TestScheduleDebounces(t *testing.T) {
	e, clock, rec := newTestEngine(t, 0)

	e.Schedule("I")
	clock.Advance(100 * time.Millisecond)
	e.Schedule("I has")
	clock.Advance(100 * time.Millisecond)
	e.Schedule("I has a pen.")
	if e.Text() != "I has a pen." {
		t.Fatalf("expected text to be current immediately, got %q", e.Text())
	}
	if len(e.Result().Issues) != 0 {
		t.Fatalf("expected result to wait for the quiet window")
	}

	clock.Advance(500 * time.Millisecond)
	if len(rec.texts) != 1 || rec.texts[0] != "I has a pen." {
		t.Fatalf("expected one delivery for the last text, got %v", rec.texts)
	}
	if clock.Now() != 700*time.Millisecond {
		t.Fatalf("expected clock at 700ms, got %v", clock.Now())
	}
	issueFor(t, e.Result(), model.RuleGrammar)
}

func TestApplyCorrectionAndUndo(t *testing.T) {
	e, _, rec := newTestEngine(t, 0)
	before := e.AnalyzeImmediate("I has a pen.")
	issue := issueFor(t, before, model.RuleGrammar)

	out := e.ApplyCorrection(issue, model.Correction{Text: "have"})
	if !out.Success {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if e.Text() != "I have a pen." {
		t.Fatalf("unexpected text %q", e.Text())
	}
	if !e.CanUndo() {
		t.Fatalf("expected history entry after correction")
	}

	entry, err := e.Undo()
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if entry.Text != "I has a pen." || e.Text() != "I has a pen." {
		t.Fatalf("expected original text restored, got %q / %q", entry.Text, e.Text())
	}
	if len(e.Result().Issues) != len(before.Issues) {
		t.Fatalf("expected prior result restored")
	}
	if rec.texts[len(rec.texts)-1] != "I has a pen." {
		t.Fatalf("expected undo to deliver restored result")
	}
	if _, err := e.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestApplyCorrectionStaleDoesNotPush(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	issue := issueFor(t, e.AnalyzeImmediate("I has a pen."), model.RuleGrammar)
	e.AnalyzeImmediate("I had a pen.")

	out := e.ApplyCorrection(issue, model.Correction{Text: "have"})
	if out.Success || !errors.Is(out.Err, correction.ErrStaleIssue) {
		t.Fatalf("expected stale failure, got %+v", out)
	}
	if e.CanUndo() {
		t.Fatalf("expected no history entry for failed correction")
	}
	if e.Text() != "I had a pen." {
		t.Fatalf("expected text unchanged, got %q", e.Text())
	}
}

func TestApplyCorrectionCancelsPending(t *testing.T) {
	e, clock, rec := newTestEngine(t, 0)
	issue := issueFor(t, e.AnalyzeImmediate("I has a pen."), model.RuleGrammar)
	e.Schedule("I has a pen.")
	e.ApplyCorrection(issue, model.Correction{Text: "have"})
	n := len(rec.texts)

	clock.Advance(time.Second)
	if len(rec.texts) != n {
		t.Fatalf("expected queued pass to be canceled")
	}
	if e.Text() != "I have a pen." {
		t.Fatalf("unexpected text %q", e.Text())
	}
}

func TestHistoryIsBounded(t *testing.T) {
	e, _, _ := newTestEngine(t, 2)
	e.AnalyzeImmediate("Teh teh teh")
	for i := 0; i < 3; i++ {
		issue := issueFor(t, e.Result(), model.RuleSpelling)
		if out := e.ApplyCorrection(issue, model.Correction{Text: "the"}); !out.Success {
			t.Fatalf("correction %d failed: %v", i, out.Err)
		}
	}
	if got := len(e.History()); got != 2 {
		t.Fatalf("expected 2 history entries, got %d", got)
	}
	undos := 0
	for e.CanUndo() {
		if _, err := e.Undo(); err != nil {
			t.Fatalf("undo: %v", err)
		}
		undos++
	}
	if undos != 2 {
		t.Fatalf("expected 2 undos, got %d", undos)
	}
	if e.Text() == "Teh teh teh" {
		t.Fatalf("expected evicted snapshot to be unreachable")
	}
}

func TestDismissIssueIsNotUndoable(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	res := e.AnalyzeImmediate("Teh cat saw teh dog.")
	issue := issueFor(t, res, model.RuleSpelling)

	after := e.DismissIssue(issue)
	for _, i := range after.Issues {
		if i.Rule == model.RuleSpelling {
			t.Fatalf("expected all matching spelling issues dismissed, got %+v", after.Issues)
		}
	}
	if e.CanUndo() {
		t.Fatalf("expected dismissal to skip history")
	}
	if len(e.Dismissed()) != 1 {
		t.Fatalf("expected one dismissed pattern")
	}
}

func TestApplyAllSinglePush(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	e.AnalyzeImmediate("Teh cat and teh dog.")
	out, err := e.ApplyAll([]correction.Edit{
		{Start: 12, End: 15, Text: "the"},
		{Start: 0, End: 3, Text: "The"},
	})
	if err != nil {
		t.Fatalf("apply all: %v", err)
	}
	if out.Text != "The cat and the dog." || e.Text() != out.Text {
		t.Fatalf("unexpected text %q", out.Text)
	}
	if len(e.History()) != 1 {
		t.Fatalf("expected one history entry, got %d", len(e.History()))
	}

	_, err = e.ApplyAll([]correction.Edit{{Start: 0, End: 3, Text: "x"}, {Start: 1, End: 2, Text: "y"}})
	if !errors.Is(err, correction.ErrOverlappingEdits) {
		t.Fatalf("expected overlap error, got %v", err)
	}
	if len(e.History()) != 1 {
		t.Fatalf("expected rejected batch not to push history")
	}
}

func TestPreviewCorrection(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	res := e.AnalyzeImmediate("I has a pen. Teh end.")
	grammar := issueFor(t, res, model.RuleGrammar)

	preview := e.PreviewCorrection(grammar, model.Correction{Text: "have"})
	spelling := issueFor(t, model.AnalysisResult{Issues: preview}, model.RuleSpelling)
	if spelling.StartIndex != 14 || spelling.EndIndex != 17 {
		t.Fatalf("expected spelling issue shifted by one, got %+v", spelling)
	}
	for _, i := range preview {
		if i.Rule == model.RuleGrammar {
			t.Fatalf("expected corrected issue dropped from preview")
		}
	}
	if e.Text() != "I has a pen. Teh end." {
		t.Fatalf("expected preview to leave text alone")
	}
}

func TestReset(t *testing.T) {
	e, clock, rec := newTestEngine(t, 0)
	res := e.AnalyzeImmediate("Teh cat sat. I has a pen.")
	e.DismissIssue(issueFor(t, res, model.RuleSpelling))
	e.ApplyCorrection(issueFor(t, e.Result(), model.RuleGrammar), model.Correction{Text: "have"})
	e.Schedule("pending text")

	e.Reset()
	clock.Advance(time.Second)
	if e.Text() != "" || e.CanUndo() || len(e.Dismissed()) != 0 {
		t.Fatalf("expected cleared session")
	}
	last := rec.results[len(rec.results)-1]
	if len(last.Issues) != 0 || last.Score.Overall != 100 {
		t.Fatalf("expected empty result delivered, got %+v", last)
	}
	if rec.texts[len(rec.texts)-1] != "" {
		t.Fatalf("expected reset to be the last delivery")
	}
}
