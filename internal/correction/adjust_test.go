package correction

import (
	"testing"

	"github.com/verte-zerg/quill/internal/model"
)

func TestDelta(t *testing.T) {
	if d := Delta("has", "have"); d != 1 {
		t.Fatalf("expected 1, got %d", d)
	}
	if d := Delta("in order to", "to"); d != -9 {
		t.Fatalf("expected -9, got %d", d)
	}
}

func TestAdjustIssuePositions(t *testing.T) {
	issues := []model.Issue{
		{Rule: model.RuleSpelling, StartIndex: 0, EndIndex: 3},
		{Rule: model.RuleGrammar, StartIndex: 4, EndIndex: 7},
		{Rule: model.RuleWordy, StartIndex: 6, EndIndex: 10},
		{Rule: model.RuleCliche, StartIndex: 10, EndIndex: 14},
	}
	got := AdjustIssuePositions(issues, 4, 7, 2)
	if len(got) != 2 {
		t.Fatalf("expected overlapping issues dropped, got %+v", got)
	}
	if got[0].StartIndex != 0 || got[0].EndIndex != 3 {
		t.Fatalf("expected earlier issue unchanged, got %+v", got[0])
	}
	if got[1].StartIndex != 12 || got[1].EndIndex != 16 {
		t.Fatalf("expected later issue shifted, got %+v", got[1])
	}
	if issues[3].StartIndex != 10 {
		t.Fatalf("expected input to be left untouched")
	}
}

func TestAdjustIssuePositionsAdjacent(t *testing.T) {
	issues := []model.Issue{
		{StartIndex: 0, EndIndex: 4},
		{StartIndex: 7, EndIndex: 9},
	}
	got := AdjustIssuePositions(issues, 4, 7, -1)
	if len(got) != 2 {
		t.Fatalf("expected touching issues kept, got %+v", got)
	}
	if got[0].EndIndex != 4 || got[1].StartIndex != 6 || got[1].EndIndex != 8 {
		t.Fatalf("unexpected positions %+v", got)
	}
}

func TestAdjustIssuePositionsInsertion(t *testing.T) {
	issues := []model.Issue{
		{StartIndex: 0, EndIndex: 5},
		{StartIndex: 5, EndIndex: 8},
	}
	got := AdjustIssuePositions(issues, 5, 5, 3)
	if got[0].StartIndex != 0 || got[0].EndIndex != 5 {
		t.Fatalf("expected issue ending at insertion point unchanged, got %+v", got[0])
	}
	if got[1].StartIndex != 8 || got[1].EndIndex != 11 {
		t.Fatalf("expected issue starting at insertion point shifted, got %+v", got[1])
	}
}

func TestAdjustForEditsMatchesApplication(t *testing.T) {
	an := newAnalyzer()
	text := "Teh cat and teh dog sat in order to rest."
	res := an.Analyze(text, nil)
	edits := []Edit{{Start: 0, End: 3, Text: "The"}, {Start: 12, End: 15, Text: "the"}}

	adjusted := AdjustForEdits(res.Issues, text, edits)
	out, err := ApplyMultiple(an, text, edits, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	wordy, ok := findRule(adjusted, model.RuleWordy)
	if !ok {
		t.Fatalf("expected wordy issue to survive adjustment, got %+v", adjusted)
	}
	if out.Text[wordy.StartIndex:wordy.EndIndex] != wordy.OriginalText {
		t.Fatalf("expected adjusted span to match new text, got %q", out.Text[wordy.StartIndex:wordy.EndIndex])
	}
	if _, ok := findRule(adjusted, model.RuleSpelling); ok {
		t.Fatalf("expected edited spans dropped, got %+v", adjusted)
	}
}
