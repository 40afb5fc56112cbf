package correction

import (
	"sort"

	"github.com/verte-zerg/quill/internal/model"
)

// Delta is the length change caused by replacing original with replacement.
func Delta(original, replacement string) int {
	return len(replacement) - len(original)
}

// AdjustIssuePositions maps issues onto the text produced by replacing
// [start, end) with a string delta bytes longer. Issues that overlap the
// replaced range are dropped, issues ending at or before start are kept as is,
// and the rest shift by delta. The input slice is not modified.
//
// The adjusted list is an estimate for display between analysis passes. It
// never replaces a re-analysis.
func AdjustIssuePositions(issues []model.Issue, start, end, delta int) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		switch {
		case issue.StartIndex < end && issue.EndIndex > start:
			continue
		case issue.EndIndex <= start:
			out = append(out, issue)
		default:
			shifted := issue
			shifted.StartIndex += delta
			shifted.EndIndex += delta
			out = append(out, shifted)
		}
	}
	return out
}

// AdjustForEdits folds AdjustIssuePositions over a batch in right-to-left
// application order. text is the text before any edit.
func AdjustForEdits(issues []model.Issue, text string, edits []Edit) []model.Issue {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start > ordered[j].Start
	})
	out := issues
	for _, e := range ordered {
		if e.Start < 0 || e.End < e.Start || e.End > len(text) {
			continue
		}
		out = AdjustIssuePositions(out, e.Start, e.End, Delta(text[e.Start:e.End], e.Text))
	}
	if out == nil {
		return []model.Issue{}
	}
	return out
}
