package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/quill/internal/document"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/stats"
	"github.com/verte-zerg/quill/internal/statsui"
)

var (
	statsFile        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	dismissedFile string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsFile, "file", "", "only runs of this file")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	path := ""
	if statsFile != "" {
		path = document.Key(statsFile)
	}
	cfg := model.StatsConfig{
		Path:        path,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if statsPlain {
		return printStats(cmd, statsui.StoreSource(st), cfg)
	}
	ui := statsui.NewModel(statsui.StoreSource(st), cfg)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, source statsui.ReportSource, cfg model.StatsConfig) error {
	rep, err := source(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, rep.Runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCurves(out, rep.Runs, cfg.CurveWindow, 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderRuleTable(out, rep.RulesAll); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newDismissedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dismissed",
		Short: "Manage dismissed patterns of a file",
	}
	cmd.PersistentFlags().StringVar(&dismissedFile, "file", "", "file the patterns belong to")
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List dismissed patterns",
		Args:  cobra.NoArgs,
		RunE:  runDismissedListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget dismissed patterns",
		Args:  cobra.NoArgs,
		RunE:  runDismissedClearCmd,
	})
	return cmd
}

func dismissedKey() (string, error) {
	if dismissedFile == "" {
		return "", fmt.Errorf("--file is required")
	}
	return document.Key(dismissedFile), nil
}

func runDismissedListCmd(cmd *cobra.Command, _ []string) error {
	key, err := dismissedKey()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	keys, err := st.ListDismissed(context.Background(), key)
	if err != nil {
		return fmt.Errorf("failed to list dismissed patterns: %w", err)
	}
	if len(keys) == 0 {
		logErrf("No dismissed patterns for %s\n", key)
		return nil
	}
	headers := []string{"Rule", "Text"}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{string(k.Rule), k.Text})
	}
	for _, line := range stats.FormatTable(headers, rows, nil) {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runDismissedClearCmd(_ *cobra.Command, _ []string) error {
	key, err := dismissedKey()
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := st.ClearDismissed(context.Background(), key)
	if err != nil {
		return fmt.Errorf("failed to clear dismissed patterns: %w", err)
	}
	logErrf("Removed %d dismissed patterns for %s\n", n, key)
	return nil
}
