package stats

import (
	"math"

	"github.com/verte-zerg/quill/internal/model"
)

// Category groups rules for scoring.
type Category string

// Score categories.
const (
	CategoryCorrectness Category = "correctness"
	CategoryClarity     Category = "clarity"
	CategoryEngagement  Category = "engagement"
	CategoryDelivery    Category = "delivery"
)

var ruleCategories = map[model.Rule]Category{
	model.RuleSpelling:     CategoryCorrectness,
	model.RuleGrammar:      CategoryCorrectness,
	model.RuleConfusedWord: CategoryCorrectness,
	model.RuleNumberFormat: CategoryCorrectness,
	model.RulePassiveVoice: CategoryClarity,
	model.RuleWordy:        CategoryClarity,
	model.RuleLongSentence: CategoryClarity,
	model.RuleCliche:       CategoryEngagement,
	model.RuleTone:         CategoryDelivery,
	model.RuleContraction:  CategoryDelivery,
}

var categoryPenalty = map[Category]int{
	CategoryCorrectness: 10,
	CategoryClarity:     6,
	CategoryEngagement:  5,
	CategoryDelivery:    4,
}

// CategoryFor returns the score category of a rule. Unknown rules count as delivery.
func CategoryFor(rule model.Rule) Category {
	if c, ok := ruleCategories[rule]; ok {
		return c
	}
	return CategoryDelivery
}

// ScoreCalculator turns a final issue list into category scores.
type ScoreCalculator struct{}

// PerfectScore is the score of text with no issues.
func PerfectScore() model.Score {
	return model.Score{Overall: 100, Correctness: 100, Clarity: 100, Engagement: 100, Delivery: 100}
}

// Score subtracts a fixed penalty per issue from each category and blends the
// categories into an overall score.
func (ScoreCalculator) Score(issues []model.Issue) model.Score {
	counts := map[Category]int{}
	for _, issue := range issues {
		counts[CategoryFor(issue.Rule)]++
	}
	categoryScore := func(c Category) int {
		v := 100 - counts[c]*categoryPenalty[c]
		if v < 0 {
			return 0
		}
		return v
	}
	s := model.Score{
		Correctness: categoryScore(CategoryCorrectness),
		Clarity:     categoryScore(CategoryClarity),
		Engagement:  categoryScore(CategoryEngagement),
		Delivery:    categoryScore(CategoryDelivery),
	}
	overall := 0.4*float64(s.Correctness) + 0.3*float64(s.Clarity) + 0.15*float64(s.Engagement) + 0.15*float64(s.Delivery)
	s.Overall = int(math.Round(overall))
	return s
}

// WeakestCategory returns the lowest-scoring category, or false when every
// category is perfect.
func WeakestCategory(s model.Score) (Category, bool) {
	type entry struct {
		c Category
		v int
	}
	entries := []entry{
		{CategoryCorrectness, s.Correctness},
		{CategoryClarity, s.Clarity},
		{CategoryEngagement, s.Engagement},
		{CategoryDelivery, s.Delivery},
	}
	weakest := entries[0]
	for _, e := range entries[1:] {
		if e.v < weakest.v {
			weakest = e
		}
	}
	if weakest.v >= 100 {
		return "", false
	}
	return weakest.c, true
}
