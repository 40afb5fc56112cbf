package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/quill/internal/document"
	"github.com/verte-zerg/quill/internal/engine"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/snapshot"
	"github.com/verte-zerg/quill/internal/stats"
	"github.com/verte-zerg/quill/internal/store"
	"github.com/verte-zerg/quill/internal/tui"
	"github.com/verte-zerg/quill/internal/watch"
)

var editFresh bool

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Edit a file with live analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runEditCmd,
	}
	cmd.Flags().BoolVar(&editFresh, "fresh", false, "ignore the saved session for this file")
	return cmd
}

func runEditCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadAnalysisConfig(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	if path == document.StdinPath {
		return fmt.Errorf("edit needs a file path")
	}
	loaded, info, err := document.LoadInfo(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	text := tui.EditorText(loaded)
	if info.Normalized {
		logErrf("note: %s is not in NFC form; saving writes it composed\n", path)
	}
	if text != strings.ReplaceAll(loaded, "\r\n", "\n") {
		logErrf("note: tabs and control characters in %s are replaced in the editor\n", path)
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

	ctx := context.Background()
	key := document.Key(path)
	feed := tui.NewFeed()
	eng := engine.New(an, engine.Options{
		QuietWindow:     cfg.QuietWindow,
		HistoryCapacity: cfg.HistoryCapacity,
		OnResult:        feed.Deliver,
	})
	sessionID := resumeSession(ctx, st, eng, key, text)
	defer eng.Cancel()

	result := eng.AnalyzeImmediate(text)
	editor := tui.NewModel(eng, feed, text, result, tui.Options{
		Title: filepath.Base(path),
		Save: func(text string) error {
			return document.Write(path, document.RestoreLineEndings(text, info))
		},
	})
	program := tea.NewProgram(editor, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if editor.Dirty() {
		if err := document.Write(path, document.RestoreLineEndings(editor.Text(), info)); err != nil {
			return err
		}
	}
	final := eng.AnalyzeImmediate(editor.Text())
	recordRun(ctx, st, sessionID, key, final)
	saveSession(ctx, st, eng, sessionID, key)
	return nil
}

// resumeSession restores dismissed patterns for key and, when the saved
// session was left on the same text, its undo history.
func resumeSession(ctx context.Context, st *store.Store, eng *engine.Engine, key, text string) string {
	dismissed, err := st.ListDismissed(ctx, key)
	if err != nil {
		logErrf("failed to load dismissed patterns: %v\n", err)
	}
	eng.RestoreDismissed(dismissed)
	if editFresh {
		return snapshot.NewID()
	}

	snap, ok, err := st.LoadSnapshot(ctx, key)
	if err != nil {
		logErrf("failed to load session: %v\n", err)
		return snapshot.NewID()
	}
	if !ok {
		return snapshot.NewID()
	}
	session, err := snapshot.Decode(snap.Payload)
	if err != nil {
		logErrf("ignoring saved session: %v\n", err)
		return snapshot.NewID()
	}
	if session.Text != text {
		logErrln("file changed since the last session; undo history discarded")
		eng.RestoreDismissed(session.Dismissed)
		return snapshot.NewID()
	}
	snapshot.Restore(eng, session)
	return session.ID
}

func saveSession(ctx context.Context, st *store.Store, eng *engine.Engine, sessionID, key string) {
	session := snapshot.Capture(sessionID, eng)
	if err := st.AddDismissed(ctx, key, session.Dismissed); err != nil {
		logErrf("failed to save dismissed patterns: %v\n", err)
	}
	payload, err := snapshot.Encode(session)
	if err != nil {
		logErrf("failed to encode session: %v\n", err)
		return
	}
	snap := store.Snapshot{Path: key, SessionID: sessionID, UpdatedAt: time.Now(), Payload: payload}
	if err := st.SaveSnapshot(ctx, snap); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a file whenever it is written",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchCmd,
	}
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadAnalysisConfig(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	an, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	w, err := watch.New(path)
	if err != nil {
		return err
	}
	key := w.Path()
	sessionID := snapshot.NewID()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	eng := engine.New(an, engine.Options{
		QuietWindow:     cfg.QuietWindow,
		HistoryCapacity: cfg.HistoryCapacity,
		OnResult: func(_ string, result model.AnalysisResult) {
			if err := printWatchLine(out, result); err != nil {
				logErrf("failed to write output: %v\n", err)
			}
			recordRun(ctx, st, sessionID, key, result)
		},
	})
	defer eng.Cancel()
	dismissed, err := loadDismissed(ctx, st, key)
	if err != nil {
		return err
	}
	eng.RestoreDismissed(dismissed.Keys())

	if text, err := document.Load(path); err == nil {
		eng.AnalyzeImmediate(text)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	logErrf("Watching %s (ctrl+c to stop)\n", key)
	return w.Run(ctx, eng.Schedule, func(err error) {
		logErrf("watch: %v\n", err)
	})
}

func printWatchLine(out io.Writer, result model.AnalysisResult) error {
	line := fmt.Sprintf("%s  score %d  issues %d  words %d",
		time.Now().Format("15:04:05"), result.Score.Overall, len(result.Issues), result.Statistics.Words)
	if weakest, ok := stats.WeakestCategory(result.Score); ok {
		line += fmt.Sprintf("  focus %s", weakest)
	}
	_, err := fmt.Fprintln(out, line)
	return err
}
