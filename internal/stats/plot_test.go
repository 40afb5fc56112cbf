package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotScores(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotScores(&buf, "Score Trend", []float64{100, 50, 0, 75}, 10, 4); err != nil {
		t.Fatalf("PlotScores failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "Score Trend" {
		t.Fatalf("expected title line, got %q", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("expected title plus 4 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "100 │ █") {
		t.Fatalf("expected full column at top row, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "  0 │ ██ █") {
		t.Fatalf("unexpected bottom row %q", lines[4])
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := len(axisLabelTop) + 3
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResampleSeriesAverages(t *testing.T) {
	out := resampleSeries([]float64{10, 20, 30, 40}, 2)
	if len(out) != 2 || out[0] != 15 || out[1] != 35 {
		t.Fatalf("unexpected resample: %v", out)
	}
}
