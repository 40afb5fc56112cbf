package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/quill/internal/model"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
	isBreak bool
}

// buildStyledRunes renders text rune by rune, marking issue spans. The
// selected issue is drawn over any other span it overlaps.
func buildStyledRunes(text string, issues []model.Issue, selected int) []styledRune {
	styles := make([]*lipgloss.Style, len(text))
	for _, issue := range issues {
		style := issueStyle(issue.Rule)
		for b := max(0, issue.StartIndex); b < min(issue.EndIndex, len(text)); b++ {
			if styles[b] == nil {
				styles[b] = &style
			}
		}
	}
	if selected >= 0 && selected < len(issues) {
		issue := issues[selected]
		for b := max(0, issue.StartIndex); b < min(issue.EndIndex, len(text)); b++ {
			styles[b] = &selectedStyle
		}
	}

	out := make([]styledRune, 0, utf8.RuneCountInString(text))
	for i, r := range text {
		if r == '\n' {
			out = append(out, styledRune{isBreak: true})
			continue
		}
		style := textStyle
		if styles[i] != nil {
			style = *styles[i]
		}
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ' || r == '\t',
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		if item.isBreak {
			b.WriteRune('\n')
			continue
		}
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if item.isBreak {
			out.WriteString(renderStyledRunes(line))
			out.WriteRune('\n')
			line = line[:0]
			lineWidth = 0
			lastSpaceIdx = -1
			i++
			continue
		}
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

// truncate cuts s to width display cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
