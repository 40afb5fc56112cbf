// Package main provides the CLI entrypoint for quill.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/quill/internal/analysis"
	"github.com/verte-zerg/quill/internal/config"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/store"
	"github.com/verte-zerg/quill/internal/wordlist"
)

const (
	defaultQuietWindowMs     = 500
	defaultHistoryCapacity   = 50
	defaultLongSentenceWords = 25
	defaultWordsPerMinute    = 238
	defaultJobs              = 0
	defaultFailBelow         = 0
	defaultCurveWindow       = 20
)

var (
	analysisQuietWindowMs     int
	analysisHistoryCapacity   int
	analysisDictionary        string
	analysisLongSentenceWords int
	analysisWordsPerMinute    int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quill",
		Short:         "Writing assistant for plain text",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&analysisQuietWindowMs, "quiet-window", defaultQuietWindowMs, "milliseconds of quiet before re-analysis")
	flags.IntVar(&analysisHistoryCapacity, "history", defaultHistoryCapacity, "undo steps kept per session")
	flags.StringVar(&analysisDictionary, "dictionary", config.DefaultDictionaryPath(), "custom spelling dictionary (wrong -> right)")
	flags.IntVar(&analysisLongSentenceWords, "long-sentence", defaultLongSentenceWords, "words before a sentence counts as long")
	flags.IntVar(&analysisWordsPerMinute, "wpm", defaultWordsPerMinute, "reading speed for reading time")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newFixCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newDismissedCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadAnalysisConfig merges config file values under flags the user did not set.
func loadAnalysisConfig(cmd *cobra.Command) (model.AnalysisConfig, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.AnalysisConfig{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "quiet-window", &analysisQuietWindowMs, fileCfg.Analysis.QuietWindowMs)
	applyIntConfig(cmd, "history", &analysisHistoryCapacity, fileCfg.Analysis.HistoryCapacity)
	applyStringConfig(cmd, "dictionary", &analysisDictionary, fileCfg.Analysis.Dictionary)
	applyIntConfig(cmd, "long-sentence", &analysisLongSentenceWords, fileCfg.Analysis.LongSentenceWords)
	applyIntConfig(cmd, "wpm", &analysisWordsPerMinute, fileCfg.Analysis.WordsPerMinute)

	cfg := model.AnalysisConfig{
		QuietWindow:       time.Duration(analysisQuietWindowMs) * time.Millisecond,
		HistoryCapacity:   analysisHistoryCapacity,
		DictionaryPath:    config.ExpandHome(analysisDictionary),
		LongSentenceWords: analysisLongSentenceWords,
		WordsPerMinute:    analysisWordsPerMinute,
	}
	if err := validateAnalysisConfig(cfg); err != nil {
		return model.AnalysisConfig{}, config.FileConfig{}, err
	}
	return cfg, fileCfg, nil
}

func validateAnalysisConfig(cfg model.AnalysisConfig) error {
	if cfg.QuietWindow <= 0 {
		return fmt.Errorf("--quiet-window must be > 0")
	}
	if cfg.HistoryCapacity <= 0 {
		return fmt.Errorf("--history must be > 0")
	}
	if cfg.LongSentenceWords <= 0 {
		return fmt.Errorf("--long-sentence must be > 0")
	}
	if cfg.WordsPerMinute <= 0 {
		return fmt.Errorf("--wpm must be > 0")
	}
	return nil
}

// newAnalyzer builds the default analyzer. A missing dictionary is not an error.
func newAnalyzer(cfg model.AnalysisConfig) (*analysis.Analyzer, error) {
	var dictionary map[string]string
	if cfg.DictionaryPath != "" {
		loaded, err := wordlist.LoadReplacements(cfg.DictionaryPath)
		switch {
		case err == nil:
			dictionary = loaded
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to load dictionary %s: %w", cfg.DictionaryPath, err)
		}
	}
	return analysis.NewDefault(cfg, dictionary), nil
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return openEditor(path)
}

func openEditor(path string) error {
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# quill configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# quiet-window-ms = %d        # Milliseconds of quiet before re-analysis
# history-capacity = %d        # Undo steps kept per session
# dictionary = %q
# long-sentence-words = %d     # Words before a sentence counts as long
# words-per-minute = %d       # Reading speed for reading time

[check]
# color = true                 # Colorize check output
# jobs = %d                     # Parallel files (0 = number of CPUs)
# fail-below = %d               # Exit non-zero when a score is below this
`,
		defaultQuietWindowMs,
		defaultHistoryCapacity,
		config.DefaultDictionaryPath(),
		defaultLongSentenceWords,
		defaultWordsPerMinute,
		defaultJobs,
		defaultFailBelow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
