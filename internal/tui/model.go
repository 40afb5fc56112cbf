// Package tui provides the Bubble Tea editing interface.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/quill/internal/correction"
	"github.com/verte-zerg/quill/internal/history"
	"github.com/verte-zerg/quill/internal/model"
	"github.com/verte-zerg/quill/internal/stats"
)

// Session is the engine surface the editor drives.
type Session interface {
	Schedule(text string)
	AnalyzeImmediate(text string) model.AnalysisResult
	ApplyCorrection(issue model.Issue, corr model.Correction) correction.Outcome
	DismissIssue(issue model.Issue) model.AnalysisResult
	Undo() (model.HistoryEntry, error)
	CanUndo() bool
}

type resultMsg struct {
	text   string
	result model.AnalysisResult
}

// Feed carries scheduled analysis results into the Bubble Tea loop.
// Only the newest undelivered result is kept.
type Feed struct {
	ch chan resultMsg
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan resultMsg, 1)}
}

// Deliver queues a result without blocking, replacing an unread one.
func (f *Feed) Deliver(text string, result model.AnalysisResult) {
	msg := resultMsg{text: text, result: result}
	for {
		select {
		case f.ch <- msg:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		return <-f.ch
	}
}

type mode int

const (
	modeEdit mode = iota
	modeReview
)

// Options configures the editor.
type Options struct {
	Title string
	// Save persists the text. Nil disables ctrl+s.
	Save func(text string) error
}

// Model implements the Bubble Tea editor.
type Model struct {
	session Session
	feed    *Feed
	opts    Options

	editor   textarea.Model
	mode     mode
	text     string
	result   model.AnalysisResult
	selected int
	dirty    bool
	status   string

	width  int
	height int
}

var (
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#101010")).Background(lipgloss.Color("#C89A3A"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))

	categoryStyles = map[stats.Category]lipgloss.Style{
		stats.CategoryCorrectness: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Underline(true),
		stats.CategoryClarity:     lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true),
		stats.CategoryEngagement:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5B9BD5")).Underline(true),
		stats.CategoryDelivery:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Underline(true),
	}
)

func issueStyle(rule model.Rule) lipgloss.Style {
	return categoryStyles[stats.CategoryFor(rule)]
}

const tabSpaces = "    "

// EditorText returns text in the form the textarea holds it: \r\n and lone
// \r become \n, tabs become spaces and other control characters are dropped.
// Text must be in this form before it is analyzed for the editor, otherwise
// the first keystroke would change every such character at once.
func EditorText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\r' || r == '\n':
			b.WriteByte('\n')
		case r == '\t':
			b.WriteString(tabSpaces)
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NewModel constructs the editor for text whose current analysis is result.
// Text is converted with EditorText, so result should describe that form.
func NewModel(session Session, feed *Feed, text string, result model.AnalysisResult, opts Options) *Model {
	text = EditorText(text)
	editor := textarea.New()
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.ShowLineNumbers = false
	editor.Prompt = ""
	editor.SetValue(text)

	m := &Model{
		session: session,
		feed:    feed,
		opts:    opts,
		editor:  editor,
		text:    text,
		result:  result,
		mode:    modeReview,
	}
	if strings.TrimSpace(text) == "" {
		m.enterEdit()
	}
	return m
}

// Text returns the current document text.
func (m *Model) Text() string {
	return m.text
}

// Dirty reports whether the text changed since the last save.
func (m *Model) Dirty() bool {
	return m.dirty
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.feed != nil {
		cmds = append(cmds, m.feed.wait())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(m.contentWidth())
		m.editor.SetHeight(max(1, m.height-3))
		return m, nil
	case resultMsg:
		if msg.text == m.text {
			m.setResult(msg.result)
		}
		if m.feed == nil {
			return m, nil
		}
		return m, m.feed.wait()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlS:
			m.save()
			return m, nil
		}
		if m.mode == modeEdit {
			return m.updateEdit(msg)
		}
		return m.updateReview(msg)
	}
	if m.mode == modeEdit {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.enterReview()
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if value := m.editor.Value(); value != m.text {
		m.text = value
		m.dirty = true
		m.status = ""
		m.session.Schedule(value)
	}
	return m, cmd
}

func (m *Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "j", "down", "tab":
		m.moveSelection(1)
	case "k", "up", "shift+tab":
		m.moveSelection(-1)
	case "enter", "a":
		m.apply(0)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.apply(int(key[0] - '1'))
	case "d":
		m.dismiss()
	case "u":
		m.undo()
	case "e", "i":
		return m, m.enterEdit()
	}
	return m, nil
}

func (m *Model) enterEdit() tea.Cmd {
	m.mode = modeEdit
	m.status = ""
	return m.editor.Focus()
}

func (m *Model) enterReview() {
	m.mode = modeReview
	m.editor.Blur()
	m.setResult(m.session.AnalyzeImmediate(m.text))
}

func (m *Model) moveSelection(delta int) {
	count := len(m.result.Issues)
	if count == 0 {
		return
	}
	m.selected = (m.selected + delta + count) % count
}

func (m *Model) selectedIssue() (model.Issue, bool) {
	if m.selected < 0 || m.selected >= len(m.result.Issues) {
		return model.Issue{}, false
	}
	return m.result.Issues[m.selected], true
}

func (m *Model) apply(suggestion int) {
	issue, ok := m.selectedIssue()
	if !ok {
		return
	}
	if suggestion >= len(issue.Suggestions) {
		m.status = fmt.Sprintf("no suggestion %d for %s", suggestion+1, issue.Rule)
		return
	}
	outcome := m.session.ApplyCorrection(issue, model.Correction{Text: issue.Suggestions[suggestion]})
	if !outcome.Success {
		m.status = fmt.Sprintf("correction failed: %v", outcome.Err)
		return
	}
	m.replaceText(outcome.Text)
	m.setResult(outcome.Result)
	m.status = ""
}

func (m *Model) dismiss() {
	issue, ok := m.selectedIssue()
	if !ok {
		return
	}
	m.setResult(m.session.DismissIssue(issue))
	m.status = ""
}

func (m *Model) undo() {
	entry, err := m.session.Undo()
	if errors.Is(err, history.ErrNothingToUndo) {
		m.status = "nothing to undo"
		return
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	m.replaceText(entry.Text)
	m.setResult(entry.Result)
	m.status = ""
}

func (m *Model) save() {
	if m.opts.Save == nil {
		return
	}
	if err := m.opts.Save(m.text); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		logErrf("failed to save document: %v\n", err)
		return
	}
	m.dirty = false
	m.status = "saved"
}

func (m *Model) replaceText(text string) {
	m.text = text
	m.dirty = true
	m.editor.SetValue(text)
}

func (m *Model) setResult(result model.AnalysisResult) {
	m.result = result
	if m.selected >= len(result.Issues) {
		m.selected = max(0, len(result.Issues)-1)
	}
}

func (m *Model) contentWidth() int {
	return max(1, int(float64(m.width)*0.70))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var content string
	if m.mode == modeEdit {
		content = m.editor.View()
	} else {
		runes := buildStyledRunes(m.text, m.result.Issues, m.selected)
		content = wrapStyledRunes(runes, m.contentWidth())
	}
	content = lipgloss.NewStyle().Width(m.contentWidth()).Render(content)

	footer := m.renderFooter()
	detail := m.renderDetail()
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 2
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	detailLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, detail)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + detailLine + "\n" + footerLine
}

func (m *Model) renderDetail() string {
	if m.status != "" {
		return statusStyle.Render(truncate(m.status, max(1, m.width)))
	}
	if m.mode == modeEdit {
		return detailStyle.Render("esc: review  ctrl+s: save  ctrl+c: quit")
	}
	issue, ok := m.selectedIssue()
	if !ok {
		return detailStyle.Render("No issues.  e: edit  u: undo  q: quit")
	}
	line := fmt.Sprintf("[%d/%d] %s: %s", m.selected+1, len(m.result.Issues), issue.Rule, issue.Message)
	if len(issue.Suggestions) > 0 {
		choices := make([]string, 0, len(issue.Suggestions))
		for i, s := range issue.Suggestions {
			if i == 9 {
				break
			}
			choices = append(choices, fmt.Sprintf("%d:%q", i+1, s))
		}
		line += "  " + strings.Join(choices, " ")
	}
	return detailStyle.Render(truncate(line, max(1, m.width)))
}

func (m *Model) renderFooter() string {
	label := "REVIEW"
	if m.mode == modeEdit {
		label = "EDIT"
	}
	segments := []string{
		label,
		fmt.Sprintf("Score %d", m.result.Score.Overall),
		fmt.Sprintf("Issues %d", len(m.result.Issues)),
		fmt.Sprintf("Words %d", m.result.Statistics.Words),
	}
	if m.session.CanUndo() {
		segments = append(segments, "Undo ready")
	}
	if m.dirty {
		segments = append(segments, "Modified")
	}
	if m.opts.Title != "" {
		segments = append([]string{m.opts.Title}, segments...)
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
