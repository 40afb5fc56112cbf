package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/stats"
)

func fixedSource(report stats.Report, err error) (ReportSource, *[]model.StatsConfig) {
	var seen []model.StatsConfig
	return func(_ context.Context, cfg model.StatsConfig) (stats.Report, error) {
		seen = append(seen, cfg)
		return report, err
	}, &seen
}

func sampleReport() stats.Report {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return stats.Report{
		Runs: []model.RunRecord{
			{ID: 1, Path: "a.txt", AnalyzedAt: base, Words: 100, Issues: 4, Score: model.Score{Overall: 80}},
			{ID: 2, Path: "a.txt", AnalyzedAt: base.Add(time.Hour), Words: 120, Issues: 2, Score: model.Score{Overall: 90}},
		},
		RulesAll:    []model.RuleCount{{Rule: model.RuleSpelling, Count: 4}, {Rule: model.RuleWordy, Count: 2}},
		RulesWindow: []model.RuleCount{{Rule: model.RuleSpelling, Count: 1}},
	}
}

func TestBuildRuleTableData(t *testing.T) {
	report := sampleReport()
	cols, rows := buildRuleTableData(report.RulesAll, report.RulesWindow)
	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "spelling" || rows[0][1] != "correctness" || rows[0][2] != "1" || rows[0][3] != "4" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1][0] != "wordy" || rows[1][2] != "0" {
		t.Fatalf("unexpected second row %v", rows[1])
	}
}

func TestRenderRunsNewestFirst(t *testing.T) {
	out := renderRuns(sampleReport().Runs)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", out)
	}
	if !strings.HasSuffix(lines[1], "90") || !strings.HasSuffix(lines[2], "80") {
		t.Fatalf("expected newest run first, got %q", out)
	}
}

func TestRenderOverviewEmpty(t *testing.T) {
	if got := renderOverview(nil, 5, 80); got != "No runs found." {
		t.Fatalf("unexpected overview %q", got)
	}
}

func TestFilterAppliesAndReloads(t *testing.T) {
	source, seen := fixedSource(sampleReport(), nil)
	m := NewModel(source, model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m.startFilter()
	m.filterInputs[0].SetValue("b.txt")
	m.filterInputs[2].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.filterMode {
		t.Fatalf("expected filter form closed")
	}
	last := (*seen)[len(*seen)-1]
	if last.Path != "b.txt" || last.Last != 3 || last.CurveWindow != 5 {
		t.Fatalf("unexpected config %+v", last)
	}
}

func TestFilterRejectsBadDate(t *testing.T) {
	source, _ := fixedSource(sampleReport(), nil)
	m := NewModel(source, model.StatsConfig{CurveWindow: 5})
	m.startFilter()
	m.filterInputs[1].SetValue("yesterday")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error to keep form open")
	}
}

func TestLoadErrorShownInFooter(t *testing.T) {
	source, _ := fixedSource(stats.Report{}, errors.New("db locked"))
	m := NewModel(source, model.StatsConfig{})
	if !strings.Contains(m.renderFooter(), "db locked") {
		t.Fatalf("expected error in footer, got %q", m.renderFooter())
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next window")
	}
	if prevCurveWindow(5) != 1 || prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 {
		t.Fatalf("unexpected previous window")
	}
}
