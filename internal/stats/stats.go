// Package stats contains text metrics, scoring, and report rendering.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/quill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary of recorded analysis runs.
func RenderSummary(w io.Writer, runs []model.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalOverall, totalIssues, totalWords float64
	best := 0
	for _, r := range runs {
		totalOverall += float64(r.Score.Overall)
		totalIssues += float64(r.Issues)
		totalWords += float64(r.Words)
		best = max(best, r.Score.Overall)
	}
	count := float64(len(runs))
	last := runs[len(runs)-1]
	overall := make([]float64, len(runs))
	for i, r := range runs {
		overall[i] = float64(r.Score.Overall)
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", len(runs)),
		fmt.Sprintf("Avg score: %.1f", totalOverall/count),
		fmt.Sprintf("Best score: %d", best),
		fmt.Sprintf("Last score: %d (%s)", last.Score.Overall, last.AnalyzedAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Avg issues: %.1f", totalIssues/count),
		fmt.Sprintf("Avg words: %.0f", totalWords/count),
		fmt.Sprintf("Trend: %s", Sparkline(overall)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves plots the smoothed overall score across runs.
func RenderCurves(w io.Writer, runs []model.RunRecord, window, totalWidth int) error {
	if len(runs) == 0 {
		return nil
	}
	overall := make([]float64, len(runs))
	for i, r := range runs {
		overall[i] = float64(r.Score.Overall)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotScores(w, "Score Trend", MovingAverage(overall, window), width, defaultPlotHeight)
}

// RenderRuleTable prints issue counts per rule, most frequent first.
func RenderRuleTable(w io.Writer, counts []model.RuleCount) error {
	if len(counts) == 0 {
		_, err := fmt.Fprintln(w, "No issues recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Issues by Rule"); err != nil {
		return err
	}
	headers := []string{"Rule", "Category", "Count"}
	rows := make([][]string, 0, len(counts))
	for _, rule := range TopRules(counts, len(counts)) {
		rows = append(rows, []string{string(rule.Rule), string(CategoryFor(rule.Rule)), fmt.Sprintf("%d", rule.Count)})
	}
	for _, line := range FormatTable(headers, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
