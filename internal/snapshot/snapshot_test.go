package snapshot

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/verte-zerg/quill/internal/analysis"
	"github.com/verte-zerg/quill/internal/engine"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/schedule"
)

func newEngine() *engine.Engine {
	return engine.New(analysis.NewDefault(model.AnalysisConfig{}, nil), engine.Options{Clock: schedule.NewManualClock()})
}

func TestEncodeDecodeSession(t *testing.T) {
	e := newEngine()
	res := e.AnalyzeImmediate("I has a pen. Teh end.")
	for _, issue := range res.Issues {
		if issue.Rule == model.RuleSpelling {
			e.DismissIssue(issue)
		}
	}
	for _, issue := range e.Result().Issues {
		if issue.Rule == model.RuleGrammar {
			e.ApplyCorrection(issue, model.Correction{Text: "have"})
		}
	}

	id := NewID()
	data, err := Encode(Capture(id, e))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != id || got.Text != "I have a pen. Teh end." {
		t.Fatalf("unexpected session header %q %q", got.ID, got.Text)
	}
	if len(got.Dismissed) != 1 || got.Dismissed[0].Text != "teh" {
		t.Fatalf("unexpected dismissed keys %+v", got.Dismissed)
	}
	if len(got.History) != 1 || got.History[0].Text != "I has a pen. Teh end." {
		t.Fatalf("unexpected history %+v", got.History)
	}
	issues := got.History[0].Result.Issues
	if len(issues) == 0 || issues[0].StartIndex != 2 || issues[0].EndIndex != 5 {
		t.Fatalf("expected grammar issue offsets preserved, got %+v", issues)
	}

	restored := newEngine()
	Restore(restored, got)
	if !restored.CanUndo() || len(restored.Dismissed()) != 1 {
		t.Fatalf("expected history and dismissed patterns restored")
	}
	entry, err := restored.Undo()
	if err != nil || entry.Text != "I has a pen. Teh end." {
		t.Fatalf("unexpected undo %q err=%v", entry.Text, err)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	data, err := msgpack.Marshal(&wireSession{Version: 99})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := Decode(data); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte{0xc1}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestEncodeRejectsNegativeOffsets(t *testing.T) {
	s := Session{History: []model.HistoryEntry{{
		Result: model.AnalysisResult{Issues: []model.Issue{{StartIndex: -1, EndIndex: 2}}},
	}}}
	if _, err := Encode(s); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}
