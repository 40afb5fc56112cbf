package stats

import (
	"context"

	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs         []model.RunRecord
	WindowRunIDs []int64
	RulesAll     []model.RuleCount
	RulesWindow  []model.RuleCount
}

// BuildReport loads and prepares recorded runs for rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}

	windowIDs := lastRunIDs(runs, cfg.CurveWindow)
	rulesAll, err := st.ListRuleCounts(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	rulesWindow, err := st.ListRuleCounts(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Runs:         runs,
		WindowRunIDs: windowIDs,
		RulesAll:     rulesAll,
		RulesWindow:  rulesWindow,
	}, nil
}

func runIDs(runs []model.RunRecord) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}

func lastRunIDs(runs []model.RunRecord, window int) []int64 {
	if window <= 0 || len(runs) <= window {
		return runIDs(runs)
	}
	return runIDs(runs[len(runs)-window:])
}
