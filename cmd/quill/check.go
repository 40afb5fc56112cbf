package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/quill/internal/analysis"
	"github.com/verte-zerg/quill/internal/correction"
	"github.com/verte-zerg/quill/internal/document"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/report"
	"github.com/verte-zerg/quill/internal/snapshot"
	"github.com/verte-zerg/quill/internal/stats"
	"github.com/verte-zerg/quill/internal/store"
)

var (
	checkColor     bool
	checkJobs      int
	checkFailBelow int
	checkNoRecord  bool

	fixRules []string
	fixWrite bool
)

type checked struct {
	path   string
	key    string
	text   string
	result model.AnalysisResult
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Analyze files and print issues",
		Long:  "Analyze files and print issues. With no files, or with \"-\", standard input is read.",
		RunE:  runCheckCmd,
	}
	cmd.Flags().BoolVar(&checkColor, "color", true, "colorize output")
	cmd.Flags().IntVar(&checkJobs, "jobs", defaultJobs, "files analyzed in parallel (0 = number of CPUs)")
	cmd.Flags().IntVar(&checkFailBelow, "fail-below", defaultFailBelow, "exit non-zero when an overall score is below this")
	cmd.Flags().BoolVar(&checkNoRecord, "no-record", false, "do not record runs in the stats database")
	return cmd
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, fileCfg, err := loadAnalysisConfig(cmd)
	if err != nil {
		return err
	}
	applyBoolConfig(cmd, "color", &checkColor, fileCfg.Check.Color)
	applyIntConfig(cmd, "jobs", &checkJobs, fileCfg.Check.Jobs)
	applyIntConfig(cmd, "fail-below", &checkFailBelow, fileCfg.Check.FailBelow)
	checkCfg := model.CheckConfig{Color: checkColor, Jobs: checkJobs, FailBelow: checkFailBelow}
	if checkCfg.FailBelow < 0 || checkCfg.FailBelow > 100 {
		return fmt.Errorf("--fail-below must be between 0 and 100")
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{document.StdinPath}
	}
	if err := validatePaths(paths); err != nil {
		return err
	}

	an, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := analyzeFiles(ctx, an, st, paths, checkCfg.Jobs)
	if err != nil {
		return err
	}

	printer := report.NewPrinter(checkCfg.Color)
	out := cmd.OutOrStdout()
	sessionID := snapshot.NewID()
	var failed []string
	for _, r := range results {
		if err := printer.Issues(out, r.path, r.text, r.result.Issues); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if err := printer.Summary(out, r.result); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if !checkNoRecord {
			recordRun(ctx, st, sessionID, r.key, r.result)
		}
		if r.result.Score.Overall < checkCfg.FailBelow {
			failed = append(failed, fmt.Sprintf("%s (%d)", r.path, r.result.Score.Overall))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("score below %d: %v", checkCfg.FailBelow, failed)
	}
	return nil
}

func validatePaths(paths []string) error {
	stdin := 0
	for _, p := range paths {
		if p == document.StdinPath {
			stdin++
		}
	}
	if stdin > 1 {
		return fmt.Errorf("standard input can only be read once")
	}
	return nil
}

// analyzeFiles loads and analyzes paths concurrently, keeping input order.
func analyzeFiles(ctx context.Context, an *analysis.Analyzer, st *store.Store, paths []string, jobs int) ([]checked, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]checked, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			text, err := document.Load(path)
			if err != nil {
				return err
			}
			key := document.Key(path)
			dismissed, err := loadDismissed(gctx, st, key)
			if err != nil {
				return err
			}
			results[i] = checked{
				path:   path,
				key:    key,
				text:   text,
				result: an.Analyze(text, dismissed),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadDismissed(ctx context.Context, st *store.Store, key string) (model.DismissedSet, error) {
	keys, err := st.ListDismissed(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load dismissed patterns: %w", err)
	}
	set := make(model.DismissedSet, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

func recordRun(ctx context.Context, st *store.Store, sessionID, key string, result model.AnalysisResult) {
	run := model.RunRecord{
		SessionID:  sessionID,
		Path:       key,
		AnalyzedAt: time.Now(),
		Words:      result.Statistics.Words,
		Issues:     len(result.Issues),
		Score:      result.Score,
	}
	if _, err := st.InsertRun(ctx, run, stats.CountRules(result.Issues)); err != nil {
		logErrf("failed to record run: %v\n", err)
	}
}

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <file>",
		Short: "Apply the first suggestion of every issue",
		Long:  "Apply the first suggestion of every issue as one batch. Text is read in NFC form, " +
			"so --write also stores decomposed characters composed; files already in NFC keep their bytes " +
			"outside the fixed spans.",
		Args:  cobra.ExactArgs(1),
		RunE:  runFixCmd,
	}
	cmd.Flags().StringSliceVar(&fixRules, "rule", nil, "only fix issues of these rules")
	cmd.Flags().BoolVarP(&fixWrite, "write", "w", false, "rewrite the file instead of printing the result")
	return cmd
}

func runFixCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadAnalysisConfig(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	if fixWrite && path == document.StdinPath {
		return fmt.Errorf("--write needs a file path")
	}
	an, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	text, info, err := loadForFix(path)
	if err != nil {
		return err
	}
	dismissed, err := loadDismissed(ctx, st, document.Key(path))
	if err != nil {
		return err
	}

	result := an.Analyze(text, dismissed)
	edits, skipped := correction.NonOverlapping(fixEdits(result.Issues, fixRules))
	batch, err := correction.ApplyMultiple(an, text, edits, dismissed)
	if err != nil {
		return fmt.Errorf("failed to apply fixes: %w", err)
	}
	logErrf("Applied %d fixes, skipped %d overlapping, %d issues remain\n", batch.Applied, skipped, len(batch.Result.Issues))

	if !fixWrite {
		if _, err := fmt.Fprint(cmd.OutOrStdout(), batch.Text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if batch.Applied == 0 {
		return nil
	}
	if info.Normalized {
		logErrf("note: %s is rewritten in NFC form\n", path)
	}
	return document.Write(path, batch.Text)
}

func loadForFix(path string) (string, document.Info, error) {
	if path == document.StdinPath {
		text, err := document.Load(path)
		return text, document.Info{}, err
	}
	return document.LoadInfo(path)
}

// fixEdits turns the first suggestion of each matching issue into an edit.
func fixEdits(issues []model.Issue, rules []string) []correction.Edit {
	allowed := map[model.Rule]bool{}
	for _, r := range rules {
		allowed[model.Rule(r)] = true
	}
	edits := make([]correction.Edit, 0, len(issues))
	for _, issue := range issues {
		if len(issue.Suggestions) == 0 {
			continue
		}
		if len(allowed) > 0 && !allowed[issue.Rule] {
			continue
		}
		edits = append(edits, correction.EditFromIssue(issue, model.Correction{Text: issue.Suggestions[0]}))
	}
	return edits
}
