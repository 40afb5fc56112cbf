package correction

import (
	"errors"
	"testing"

	"github.com/verte-zerg/quill/internal/analysis"
	"github.com/verte-zerg/quill/internal/model"
)

func newAnalyzer() *analysis.Analyzer {
	return analysis.NewDefault(model.AnalysisConfig{}, nil)
}

func findRule(issues []model.Issue, rule model.Rule) (model.Issue, bool) {
	for _, issue := range issues {
		if issue.Rule == rule {
			return issue, true
		}
	}
	return model.Issue{}, false
}

func TestApplyFromIssueRoundTrip(t *testing.T) {
	an := newAnalyzer()
	text := "I has a pen."
	res := an.Analyze(text, nil)
	issue, ok := findRule(res.Issues, model.RuleGrammar)
	if !ok {
		t.Fatalf("expected grammar issue in %q, got %+v", text, res.Issues)
	}
	if len(issue.Suggestions) == 0 || issue.Suggestions[0] != "have" {
		t.Fatalf("expected suggestion \"have\", got %v", issue.Suggestions)
	}

	out := ApplyFromIssue(an, text, issue, model.Correction{Text: issue.Suggestions[0]}, nil)
	if !out.Success || out.Err != nil {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.Text != "I have a pen." {
		t.Fatalf("expected corrected text, got %q", out.Text)
	}
	if _, ok := findRule(out.Result.Issues, model.RuleGrammar); ok {
		t.Fatalf("expected grammar issue to be gone, got %+v", out.Result.Issues)
	}
}

func TestApplyFromIssueStale(t *testing.T) {
	an := newAnalyzer()
	issue := model.Issue{Rule: model.RuleGrammar, StartIndex: 2, EndIndex: 5, OriginalText: "has"}
	text := "I had a pen."

	out := ApplyFromIssue(an, text, issue, model.Correction{Text: "have"}, nil)
	if out.Success {
		t.Fatalf("expected failure for stale issue")
	}
	if out.Text != text {
		t.Fatalf("expected unmodified text, got %q", out.Text)
	}
	if !errors.Is(out.Err, ErrStaleIssue) {
		t.Fatalf("expected ErrStaleIssue, got %v", out.Err)
	}
	var mismatch *MismatchError
	if !errors.As(out.Err, &mismatch) || mismatch.Actual != "had" || mismatch.Expected != "has" {
		t.Fatalf("expected mismatch details, got %v", out.Err)
	}
	if out.Result.Statistics.Words != 4 {
		t.Fatalf("expected fresh result for unmodified text, got %+v", out.Result.Statistics)
	}
}

func TestApplyFromIssueInvalidRange(t *testing.T) {
	an := newAnalyzer()
	text := "Short."
	for _, issue := range []model.Issue{
		{StartIndex: -1, EndIndex: 2},
		{StartIndex: 4, EndIndex: 2},
		{StartIndex: 0, EndIndex: 99},
	} {
		out := ApplyFromIssue(an, text, issue, model.Correction{Text: "x"}, nil)
		if out.Success || !errors.Is(out.Err, ErrInvalidRange) {
			t.Fatalf("expected invalid range for %+v, got %+v", issue, out)
		}
		if out.Text != text {
			t.Fatalf("expected unmodified text, got %q", out.Text)
		}
	}
}

func TestApplyFromIssueRejectsSplitRune(t *testing.T) {
	an := newAnalyzer()
	text := "café time"
	issue := model.Issue{StartIndex: 0, EndIndex: 4, OriginalText: text[:4]}
	out := ApplyFromIssue(an, text, issue, model.Correction{Text: "x"}, nil)
	if !errors.Is(out.Err, ErrInvalidRange) {
		t.Fatalf("expected invalid range for split rune, got %v", out.Err)
	}
}

func TestApplyMultipleOrderInvariant(t *testing.T) {
	an := newAnalyzer()
	text := "Teh cat and teh dog."
	a := Edit{Start: 0, End: 3, Text: "The"}
	b := Edit{Start: 12, End: 15, Text: "the"}

	first, err := ApplyMultiple(an, text, []Edit{a, b}, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	second, err := ApplyMultiple(an, text, []Edit{b, a}, nil)
	if err != nil {
		t.Fatalf("apply reversed: %v", err)
	}
	if first.Text != "The cat and the dog." || second.Text != first.Text {
		t.Fatalf("expected order-independent result, got %q and %q", first.Text, second.Text)
	}
	if first.Applied != 2 {
		t.Fatalf("expected 2 applied edits, got %d", first.Applied)
	}
	if _, ok := findRule(first.Result.Issues, model.RuleSpelling); ok {
		t.Fatalf("expected spelling issues fixed, got %+v", first.Result.Issues)
	}
}

func TestApplyMultipleLengthChanges(t *testing.T) {
	an := newAnalyzer()
	text := "In order to win, we train a lot."
	edits := []Edit{
		{Start: 0, End: 11, Text: "To", Expect: "In order to"},
		{Start: 17, End: 19, Text: "they", Expect: "we"},
	}
	out, err := ApplyMultiple(an, text, edits, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Text != "To win, they train a lot." {
		t.Fatalf("unexpected text %q", out.Text)
	}
}

func TestApplyMultipleRejectsOverlap(t *testing.T) {
	an := newAnalyzer()
	text := "abcdef"
	cases := [][]Edit{
		{{Start: 0, End: 3, Text: "x"}, {Start: 2, End: 4, Text: "y"}},
		{{Start: 1, End: 1, Text: "x"}, {Start: 1, End: 1, Text: "y"}},
	}
	for _, edits := range cases {
		out, err := ApplyMultiple(an, text, edits, nil)
		if !errors.Is(err, ErrOverlappingEdits) {
			t.Fatalf("expected overlap error for %+v, got %v", edits, err)
		}
		if out.Text != text {
			t.Fatalf("expected unmodified text, got %q", out.Text)
		}
	}

	out, err := ApplyMultiple(an, text, []Edit{{Start: 0, End: 2, Text: "x"}, {Start: 2, End: 4, Text: "y"}}, nil)
	if err != nil {
		t.Fatalf("expected adjacent edits to apply: %v", err)
	}
	if out.Text != "xyef" {
		t.Fatalf("unexpected text %q", out.Text)
	}
}

func TestApplyMultipleRejectsStaleEdit(t *testing.T) {
	an := newAnalyzer()
	_, err := ApplyMultiple(an, "abc", []Edit{{Start: 0, End: 1, Text: "z", Expect: "q"}}, nil)
	if !errors.Is(err, ErrStaleIssue) {
		t.Fatalf("expected stale error, got %v", err)
	}
}

func TestApplyMultipleEmptyBatch(t *testing.T) {
	an := newAnalyzer()
	out, err := ApplyMultiple(an, "I has a pen.", nil, nil)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Text != "I has a pen." || out.Applied != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestNonOverlapping(t *testing.T) {
	kept, skipped := NonOverlapping([]Edit{
		{Start: 5, End: 8},
		{Start: 0, End: 3},
		{Start: 2, End: 6},
		{Start: 9, End: 10},
	})
	if skipped != 1 {
		t.Fatalf("expected 1 skipped edit, got %d", skipped)
	}
	if len(kept) != 3 || kept[0].Start != 0 || kept[1].Start != 5 || kept[2].Start != 9 {
		t.Fatalf("unexpected kept edits %+v", kept)
	}
}
