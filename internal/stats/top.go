package stats

import (
	"sort"

	"github.com/verte-zerg/quill/internal/model"
)

// TopRules returns the n most frequent rules, ties broken by name.
func TopRules(counts []model.RuleCount, n int) []model.RuleCount {
	if n <= 0 || len(counts) == 0 {
		return nil
	}
	items := make([]model.RuleCount, len(counts))
	copy(items, counts)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Rule < items[j].Rule
		}
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// CountRules tallies issues per rule.
func CountRules(issues []model.Issue) []model.RuleCount {
	tally := map[model.Rule]int{}
	var order []model.Rule
	for _, issue := range issues {
		if _, ok := tally[issue.Rule]; !ok {
			order = append(order, issue.Rule)
		}
		tally[issue.Rule]++
	}
	out := make([]model.RuleCount, 0, len(order))
	for _, rule := range order {
		out = append(out, model.RuleCount{Rule: rule, Count: tally[rule]})
	}
	return out
}
