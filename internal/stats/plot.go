package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelTop        = "100"
	axisLabelMid        = "50"
	axisLabelBottom     = "0"
	axisSeparator       = " │ "
	terminalWidthBackup = 80
)

// Eighth-block glyphs used for partial column fill.
var barGlyphs = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// PlotScores renders values on a fixed 0-100 scale as a column chart.
func PlotScores(w io.Writer, title string, values []float64, width, height int) error {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)
	columns := resampleSeries(values, width)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labels := makeAxisLabels(height)
	labelWidth := len(axisLabelTop)
	for row := 0; row < height; row++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s", labelWidth, labels[row], axisSeparator)
		// Row 0 is the top of the chart.
		floor := float64(height-row-1) / float64(height) * 100
		for _, v := range columns {
			b.WriteRune(cellGlyph(v, floor, 100/float64(height)))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func cellGlyph(value, floor, step float64) rune {
	value = math.Max(0, math.Min(100, value))
	fill := (value - floor) / step
	switch {
	case fill <= 0:
		return barGlyphs[0]
	case fill >= 1:
		return barGlyphs[len(barGlyphs)-1]
	}
	idx := int(math.Round(fill * float64(len(barGlyphs)-1)))
	return barGlyphs[idx]
}

func makeAxisLabels(height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}
	return labels
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
