// Package correction applies suggested replacements to text and keeps issue
// positions in step with edits.
package correction

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/verte-zerg/quill/internal/model"
)

// Analyzer re-analyzes text after an edit.
type Analyzer interface {
	Analyze(text string, dismissed model.DismissedSet) model.AnalysisResult
}

// Outcome is the result of applying one correction. Result always describes
// Text: the corrected text on success, the unmodified text otherwise.
type Outcome struct {
	Text    string
	Result  model.AnalysisResult
	Success bool
	Err     error
}

// Edit replaces [Start, End) with Text. When Expect is non-empty the current
// text under the span must equal it.
type Edit struct {
	Start  int
	End    int
	Text   string
	Expect string
}

// EditFromIssue builds an edit that replaces the issue span with corr.
func EditFromIssue(issue model.Issue, corr model.Correction) Edit {
	return Edit{
		Start:  issue.StartIndex,
		End:    issue.EndIndex,
		Text:   corr.Text,
		Expect: issue.OriginalText,
	}
}

// BatchOutcome is the result of applying several edits at once.
type BatchOutcome struct {
	Text    string
	Result  model.AnalysisResult
	Applied int
}

// ApplyFromIssue replaces the issue span with corr and re-analyzes the new
// text. A stale or out-of-range issue leaves the text unchanged and returns a
// fresh result for it.
func ApplyFromIssue(an Analyzer, text string, issue model.Issue, corr model.Correction, dismissed model.DismissedSet) Outcome {
	if err := validRange(text, issue.StartIndex, issue.EndIndex); err != nil {
		return Outcome{Text: text, Result: an.Analyze(text, dismissed), Err: err}
	}
	if actual := text[issue.StartIndex:issue.EndIndex]; actual != issue.OriginalText {
		return Outcome{
			Text:   text,
			Result: an.Analyze(text, dismissed),
			Err: &MismatchError{
				Start:    issue.StartIndex,
				End:      issue.EndIndex,
				Expected: issue.OriginalText,
				Actual:   actual,
			},
		}
	}
	updated := Splice(text, issue.StartIndex, issue.EndIndex, corr.Text)
	return Outcome{
		Text:    updated,
		Result:  an.Analyze(updated, dismissed),
		Success: true,
	}
}

// ApplyMultiple applies every edit right to left and re-analyzes once. The
// batch is all or nothing: an invalid, stale or overlapping edit leaves the
// text unchanged and the returned outcome carries a fresh result for it.
func ApplyMultiple(an Analyzer, text string, edits []Edit, dismissed model.DismissedSet) (BatchOutcome, error) {
	ordered, err := prepare(text, edits)
	if err != nil {
		return BatchOutcome{Text: text, Result: an.Analyze(text, dismissed)}, err
	}
	updated := text
	for _, e := range ordered {
		updated = Splice(updated, e.Start, e.End, e.Text)
	}
	return BatchOutcome{
		Text:    updated,
		Result:  an.Analyze(updated, dismissed),
		Applied: len(ordered),
	}, nil
}

// NonOverlapping keeps the edits that can be applied together, preferring
// earlier starts, and reports how many were skipped.
func NonOverlapping(edits []Edit) ([]Edit, int) {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})
	kept := make([]Edit, 0, len(ordered))
	skipped := 0
	for _, e := range ordered {
		if len(kept) > 0 && overlaps(kept[len(kept)-1], e) {
			skipped++
			continue
		}
		kept = append(kept, e)
	}
	return kept, skipped
}

// Splice replaces text[start:end] with replacement.
func Splice(text string, start, end int, replacement string) string {
	return text[:start] + replacement + text[end:]
}

// prepare validates the batch and returns it sorted by start, descending.
func prepare(text string, edits []Edit) ([]Edit, error) {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	for _, e := range ordered {
		if err := validRange(text, e.Start, e.End); err != nil {
			return nil, err
		}
		if e.Expect != "" && text[e.Start:e.End] != e.Expect {
			return nil, &MismatchError{Start: e.Start, End: e.End, Expected: e.Expect, Actual: text[e.Start:e.End]}
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start > ordered[j].Start
		}
		return ordered[i].End > ordered[j].End
	})
	for i := 1; i < len(ordered); i++ {
		if overlaps(ordered[i], ordered[i-1]) {
			return nil, fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlappingEdits,
				ordered[i].Start, ordered[i].End, ordered[i-1].Start, ordered[i-1].End)
		}
	}
	return ordered, nil
}

// overlaps reports whether two edits touch the same bytes. Two insertions at
// the same offset also conflict since their order would be ambiguous.
func overlaps(a, b Edit) bool {
	if a.Start > b.Start {
		a, b = b, a
	}
	if a.Start == b.Start {
		return true
	}
	return b.Start < a.End
}

func validRange(text string, start, end int) error {
	if start < 0 || end < start || end > len(text) {
		return rangeError(start, end, len(text))
	}
	if !runeBoundary(text, start) || !runeBoundary(text, end) {
		return rangeError(start, end, len(text))
	}
	return nil
}

func runeBoundary(text string, i int) bool {
	return i == len(text) || utf8.RuneStart(text[i])
}
