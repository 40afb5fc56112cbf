// Package snapshot encodes editing sessions so dismissed patterns and undo
// history survive between runs.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/verte-zerg/quill/internal/engine"
	"github.com/verte-zerg/quill/internal/model"
)

const formatVersion = 1

// ErrVersion is returned when a payload was written by an unknown format.
var ErrVersion = errors.New("unsupported snapshot version")

// Session is the persisted part of an editing session.
type Session struct {
	ID        string
	Text      string
	Dismissed []model.DismissedPatternKey
	History   []model.HistoryEntry
}

type wireSession struct {
	Version   int         `msgpack:"v"`
	ID        string      `msgpack:"id"`
	Text      string      `msgpack:"t"`
	Dismissed []wireKey   `msgpack:"d"`
	History   []wireEntry `msgpack:"h"`
}

type wireKey struct {
	Rule string `msgpack:"r"`
	Text string `msgpack:"t"`
}

type wireEntry struct {
	Text        string            `msgpack:"t"`
	Issues      []wireIssue       `msgpack:"i"`
	Score       model.Score       `msgpack:"s"`
	Readability model.Readability `msgpack:"r"`
	Tone        model.ToneReport  `msgpack:"n"`
	Statistics  model.Statistics  `msgpack:"c"`
}

type wireIssue struct {
	Rule        string   `msgpack:"r"`
	Message     string   `msgpack:"m"`
	Start       uint32   `msgpack:"s"`
	End         uint32   `msgpack:"e"`
	Original    string   `msgpack:"o"`
	Suggestions []string `msgpack:"g,omitempty"`
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Capture reads the persisted state of a live session.
func Capture(id string, e *engine.Engine) Session {
	return Session{
		ID:        id,
		Text:      e.Text(),
		Dismissed: e.Dismissed().Keys(),
		History:   e.History(),
	}
}

// Restore loads dismissed patterns and undo history into a session. The
// current text is left to the caller.
func Restore(e *engine.Engine, s Session) {
	e.RestoreDismissed(s.Dismissed)
	e.RestoreHistory(s.History)
}

// Encode serializes a session with msgpack.
func Encode(s Session) ([]byte, error) {
	w := wireSession{
		Version: formatVersion,
		ID:      s.ID,
		Text:    s.Text,
	}
	for _, k := range s.Dismissed {
		w.Dismissed = append(w.Dismissed, wireKey{Rule: string(k.Rule), Text: k.Text})
	}
	for _, h := range s.History {
		issues, err := encodeIssues(h.Result.Issues)
		if err != nil {
			return nil, err
		}
		w.History = append(w.History, wireEntry{
			Text:        h.Text,
			Issues:      issues,
			Score:       h.Result.Score,
			Readability: h.Result.Readability,
			Tone:        h.Result.Tone,
			Statistics:  h.Result.Statistics,
		})
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(&w); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a payload produced by Encode.
func Decode(data []byte) (Session, error) {
	var w wireSession
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return Session{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if w.Version != formatVersion {
		return Session{}, fmt.Errorf("%w: %d", ErrVersion, w.Version)
	}
	s := Session{ID: w.ID, Text: w.Text}
	for _, k := range w.Dismissed {
		s.Dismissed = append(s.Dismissed, model.NewDismissedPatternKey(model.Rule(k.Rule), k.Text))
	}
	for _, h := range w.History {
		issues, err := decodeIssues(h.Issues)
		if err != nil {
			return Session{}, err
		}
		s.History = append(s.History, model.HistoryEntry{
			Text: h.Text,
			Result: model.AnalysisResult{
				Issues:      issues,
				Score:       h.Score,
				Readability: h.Readability,
				Tone:        h.Tone,
				Statistics:  h.Statistics,
			},
		})
	}
	return s, nil
}

func encodeIssues(issues []model.Issue) ([]wireIssue, error) {
	out := make([]wireIssue, 0, len(issues))
	for _, issue := range issues {
		start, err := safecast.Conv[uint32](issue.StartIndex)
		if err != nil {
			return nil, fmt.Errorf("issue start %d: %w", issue.StartIndex, err)
		}
		end, err := safecast.Conv[uint32](issue.EndIndex)
		if err != nil {
			return nil, fmt.Errorf("issue end %d: %w", issue.EndIndex, err)
		}
		out = append(out, wireIssue{
			Rule:        string(issue.Rule),
			Message:     issue.Message,
			Start:       start,
			End:         end,
			Original:    issue.OriginalText,
			Suggestions: issue.Suggestions,
		})
	}
	return out, nil
}

func decodeIssues(in []wireIssue) ([]model.Issue, error) {
	out := make([]model.Issue, 0, len(in))
	for _, w := range in {
		start, err := safecast.Conv[int](w.Start)
		if err != nil {
			return nil, err
		}
		end, err := safecast.Conv[int](w.End)
		if err != nil {
			return nil, err
		}
		if start > end {
			return nil, fmt.Errorf("failed to decode snapshot: issue span [%d,%d)", start, end)
		}
		out = append(out, model.Issue{
			Rule:         model.Rule(w.Rule),
			Message:      w.Message,
			StartIndex:   start,
			EndIndex:     end,
			OriginalText: w.Original,
			Suggestions:  w.Suggestions,
		})
	}
	return out, nil
}
