// Package report prints analysis results for the command line.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/stats"
)

const snippetWidth = 32

// Printer renders results, optionally with ANSI colors.
type Printer struct {
	title      *color.Color
	header     *color.Color
	categories map[stats.Category]*color.Color
	good       *color.Color
	fair       *color.Color
	poor       *color.Color
}

// NewPrinter returns a printer. Colors are dropped when enabled is false.
func NewPrinter(enabled bool) *Printer {
	p := &Printer{
		title:  color.New(color.Bold),
		header: color.New(color.Faint),
		categories: map[stats.Category]*color.Color{
			stats.CategoryCorrectness: color.New(color.FgRed),
			stats.CategoryClarity:     color.New(color.FgYellow),
			stats.CategoryEngagement:  color.New(color.FgMagenta),
			stats.CategoryDelivery:    color.New(color.FgCyan),
		},
		good: color.New(color.FgGreen, color.Bold),
		fair: color.New(color.FgYellow, color.Bold),
		poor: color.New(color.FgRed, color.Bold),
	}
	for _, c := range p.all() {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) all() []*color.Color {
	out := []*color.Color{p.title, p.header, p.good, p.fair, p.poor}
	for _, c := range p.categories {
		out = append(out, c)
	}
	return out
}

// Issues prints one aligned row per issue with its line and column.
func (p *Printer) Issues(w io.Writer, name, text string, issues []model.Issue) error {
	if _, err := fmt.Fprintln(w, p.title.Sprint(name)); err != nil {
		return err
	}
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, "No issues found.")
		return err
	}
	headers := []string{"Pos", "Rule", "Text", "Suggestion", "Message"}
	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		line, col := Position(text, issue.StartIndex)
		suggestion := ""
		if len(issue.Suggestions) > 0 {
			suggestion = quote(issue.Suggestions[0])
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d:%d", line, col),
			string(issue.Rule),
			quote(issue.OriginalText),
			suggestion,
			issue.Message,
		})
	}
	lines := stats.FormatTable(headers, rows, nil)
	for i, line := range lines {
		if i == 0 {
			line = p.header.Sprint(line)
		} else {
			line = p.categories[stats.CategoryFor(issues[i-1].Rule)].Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Summary prints scores, readability, tone and counts.
func (p *Printer) Summary(w io.Writer, result model.AnalysisResult) error {
	s := result.Score
	r := result.Readability
	st := result.Statistics
	tone := string(result.Tone.Dominant)
	if !result.Tone.Consistent {
		tone += fmt.Sprintf(" (%d inconsistent)", len(result.Tone.Inconsistencies))
	}
	lines := []string{
		fmt.Sprintf("Score: %s  correctness %d  clarity %d  engagement %d  delivery %d",
			p.scoreColor(s.Overall).Sprint(s.Overall), s.Correctness, s.Clarity, s.Engagement, s.Delivery),
		fmt.Sprintf("Grade level: %.1f  avg sentence %.1f words  avg word %.1f letters",
			r.GradeLevel, r.AvgSentenceLength, r.AvgWordLength),
		fmt.Sprintf("Tone: %s", tone),
		fmt.Sprintf("Words: %d  sentences %d  paragraphs %d  reading time %s",
			st.Words, st.Sentences, st.Paragraphs, st.ReadingTime),
	}
	if weakest, ok := stats.WeakestCategory(s); ok {
		lines = append(lines, fmt.Sprintf("Focus: %s", weakest))
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) scoreColor(v int) *color.Color {
	switch {
	case v >= 85:
		return p.good
	case v >= 60:
		return p.fair
	default:
		return p.poor
	}
}

// Position converts a byte offset into a 1-based line and rune column.
func Position(text string, offset int) (int, int) {
	offset = max(0, min(offset, len(text)))
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return line, utf8.RuneCountInString(before[lineStart:]) + 1
}

func quote(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return fmt.Sprintf("%q", runewidth.Truncate(s, snippetWidth, "…"))
}
