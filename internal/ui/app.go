package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"modelarena/internal/arena"
	"modelarena/internal/attach"
	"modelarena/internal/chat"
	"modelarena/internal/commands"
	"modelarena/internal/db"
	"modelarena/internal/export"
	"modelarena/internal/models"
	"modelarena/internal/orchestrator"
	"modelarena/internal/rating"
)

const sidebarWidth = 30

// FeedbackStore receives /feedback submissions.
type FeedbackStore interface {
	AddFeedback(f db.Feedback) (int64, error)
}

// Deps are the services the TUI drives.
type Deps struct {
	Session      *chat.Session
	Arena        *arena.Arena
	Catalog      *models.Registry
	Orchestrator *orchestrator.Orchestrator
	Feedback     FeedbackStore // nil when storage is disabled
	ExportDir    string
	Logger       *slog.Logger
}

type (
	askDoneMsg struct {
		reply  chat.Message
		models []string
		err    error
	}
	compareDoneMsg struct {
		cmp    orchestrator.Comparison
		models []string
		err    error
	}
	battleDoneMsg struct {
		battle arena.Battle
		models []string
		err    error
	}
	tickMsg time.Time
)

type Model struct {
	deps   Deps
	logger *slog.Logger

	width, height int
	ready         bool
	mode          ViewMode

	input      textinput.Model
	transcript *Transcript
	view       *TranscriptView
	history    *HistoryState

	busy        bool
	cancel      context.CancelFunc
	attachments []attach.Attachment
	picks       arena.Selection
}

func New(deps Deps) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask every selected model, or type /help"
	ti.CharLimit = 4096
	ti.Focus()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := NewTranscript(deps.Catalog)
	if conv, ok := deps.Session.Current(); ok {
		t.Load(conv)
	}
	t.AddSystem("Welcome to Model Arena. Type a prompt to ask " +
		strings.Join(deps.Session.Models(), ", ") + ", or /help for commands.")

	return Model{
		deps:       deps,
		logger:     logger.With(slog.String("module", "ui")),
		input:      ti,
		transcript: t,
		history:    NewHistoryState(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func tick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.SetMaxHeight(msg.Height)
		w, h := m.paneSize()
		if !m.ready {
			m.view = NewTranscriptView(m.transcript, w, h)
			m.ready = true
		} else {
			m.view.Resize(w, h)
		}
		m.input.Width = m.width - 6
		m.refresh()
		return m, nil

	case tickMsg:
		if !m.busy {
			return m, nil
		}
		m.transcript.TickAnimation()
		m.refresh()
		return m, tick()

	case askDoneMsg:
		m.finish(msg.models, msg.err)
		if msg.err == nil {
			m.transcript.AddMessage(msg.reply)
		}
		m.refresh()
		return m, nil

	case compareDoneMsg:
		m.finish(msg.models, msg.err)
		if msg.err == nil {
			m.transcript.AddSystem(RenderComparison(msg.cmp, m.transcript.sourceName))
		}
		m.refresh()
		return m, nil

	case battleDoneMsg:
		m.finish(msg.models, msg.err)
		if msg.err == nil {
			m.showBattle(msg.battle)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case "f1":
		if m.mode == ViewHelp {
			m.mode = ViewNormal
		} else {
			m.mode = ViewHelp
		}
		return m, nil
	case "alt+h":
		m.openHistory()
		return m, nil
	case "alt+r":
		m.mode = ViewRankings
		return m, nil
	case "esc":
		if m.mode != ViewNormal {
			m.mode = ViewNormal
		} else if m.busy && m.cancel != nil {
			m.cancel()
		}
		return m, nil
	}

	switch m.mode {
	case ViewHistory:
		switch msg.String() {
		case "up", "k":
			m.history.Up()
		case "down", "j":
			m.history.Down()
		case "enter":
			if c := m.history.Selected(); c != nil {
				if err := m.deps.Session.Select(c.ID); err != nil {
					m.transcript.AddError("system", err.Error(), false)
				} else {
					m.transcript.Load(*c)
				}
				m.mode = ViewNormal
				m.refresh()
			}
		}
		return m, nil
	case ViewHelp, ViewRankings:
		return m, nil
	}

	switch msg.String() {
	case "pgup", "pgdown", "up", "down":
		if m.view != nil {
			var cmd tea.Cmd
			m.view.Viewport, cmd = m.view.Viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if value == "" {
			return m, nil
		}
		return m.submit(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs a slash command or sends a prompt.
func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	cmd := commands.Parse(value)
	if cmd == nil {
		return m.ask(value)
	}

	switch c := cmd.(type) {
	case commands.Help:
		m.mode = ViewHelp
	case commands.NewConversation:
		conv, err := m.deps.Session.CreateConversation(c.Title, nil)
		if err != nil {
			m.transcript.AddError("system", err.Error(), false)
			break
		}
		m.transcript.Load(conv)
		m.transcript.AddSystem(fmt.Sprintf("Started %q with %s", conv.Title, strings.Join(conv.Models, ", ")))
	case commands.Models:
		m.selectModels(c.IDs)
	case commands.Compare:
		return m.compare(c.Prompt)
	case commands.Battle:
		return m.battle(c)
	case commands.Vote:
		m.vote(c.Side)
	case commands.Rankings:
		if c.Reset {
			m.deps.Arena.Ladder().Reset()
			m.transcript.AddSystem("Ratings reset to their starting values.")
		}
		m.mode = ViewRankings
	case commands.Pick:
		m.pick(c.ModelID)
	case commands.ShowHistory:
		m.openHistory()
	case commands.Export:
		m.exportCurrent(c.Format)
	case commands.Feedback:
		m.feedback(c)
	case commands.Attach:
		m.attachFile(c.Path)
	case commands.Quit:
		return m, tea.Quit
	case commands.ParseError:
		m.transcript.AddError("system", c.Message, false)
	}

	m.refresh()
	return m, nil
}

func (m *Model) begin(ids []string) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.busy = true
	for _, id := range ids {
		m.transcript.UpdateModelStatus(id, models.StatusResponding)
	}
	return ctx
}

func (m *Model) finish(ids []string, err error) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.busy = false

	status := models.StatusIdle
	switch {
	case errors.Is(err, orchestrator.ErrTimeout):
		status = models.StatusTimeout
	case errors.Is(err, context.Canceled):
		m.transcript.AddSystem("Cancelled.")
	case err != nil:
		status = models.StatusError
	}
	for _, id := range ids {
		m.transcript.UpdateModelStatus(id, status)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Warn("request failed", slog.Any("error", err))
		m.transcript.AddError("system", err.Error(), errors.Is(err, orchestrator.ErrTimeout))
	}
}

func (m Model) ask(prompt string) (tea.Model, tea.Cmd) {
	if m.busy {
		m.transcript.AddSystem("Still waiting for the previous answer (Esc cancels).")
		m.refresh()
		return m, nil
	}

	ids := m.deps.Session.Models()
	ctx := m.begin(ids)
	m.transcript.AddMessage(chat.NewMessage(chat.RoleUser, prompt))
	m.refresh()

	full := m.takeAttachments(prompt)
	session := m.deps.Session
	run := func() tea.Msg {
		reply, err := session.Ask(ctx, full)
		return askDoneMsg{reply: reply, models: ids, err: err}
	}
	return m, tea.Batch(run, tick())
}

func (m Model) compare(prompt string) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	ids := m.deps.Session.Models()
	infos, missing := m.deps.Catalog.Resolve(ids)
	if len(missing) > 0 || len(infos) == 0 {
		m.transcript.AddError("system", "select models with /models first", false)
		m.refresh()
		return m, nil
	}

	ctx := m.begin(ids)
	m.refresh()

	full := m.takeAttachments(prompt)
	orch := m.deps.Orchestrator
	run := func() tea.Msg {
		cmp, err := orch.Compare(ctx, full, infos)
		return compareDoneMsg{cmp: cmp, models: ids, err: err}
	}
	return m, tea.Batch(run, tick())
}

func (m Model) battle(c commands.Battle) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	modelA, modelB, prompt := c.ModelA, c.ModelB, c.Prompt
	_, knownA := m.deps.Catalog.Info(modelA)
	_, knownB := m.deps.Catalog.Info(modelB)
	switch {
	case knownA && knownB:
		if modelA != modelB {
			m.picks.Clear()
			m.picks.Toggle(modelA)
			m.picks.Toggle(modelB)
		}
	case m.picks.Ready():
		ids := m.picks.IDs()
		modelA, modelB, prompt = ids[0], ids[1], c.Text
	default:
		m.transcript.AddError("system", "pick two models with /pick <id>, or use /battle <a> <b> <prompt>", false)
		m.refresh()
		return m, nil
	}

	ids := []string{modelA, modelB}
	ctx := m.begin(ids)
	m.transcript.AddMessage(chat.NewMessage(chat.RoleUser, prompt))
	m.refresh()

	full := m.takeAttachments(prompt)
	a := m.deps.Arena
	run := func() tea.Msg {
		b, err := a.Start(ctx, full, modelA, modelB)
		return battleDoneMsg{battle: b, models: ids, err: err}
	}
	return m, tea.Batch(run, tick())
}

// pick toggles id in the battle picker. Picking a third model drops the
// oldest.
func (m *Model) pick(id string) {
	if id == "" {
		m.picks.Clear()
		m.transcript.AddSystem("Battle picks cleared.")
		return
	}
	if _, ok := m.deps.Catalog.Info(id); !ok {
		m.transcript.AddError("system", "unknown model: "+id, false)
		return
	}
	m.picks.Toggle(id)

	ids := m.picks.IDs()
	if !m.picks.Ready() {
		m.transcript.AddSystem(fmt.Sprintf("Battle picks: %s. Pick one more.", strings.Join(ids, ", ")))
		return
	}
	m.transcript.AddSystem(fmt.Sprintf("Battle picks: %s vs %s. Start with /battle <prompt>.", ids[0], ids[1]))
}

func (m *Model) attachFile(path string) {
	if path == "" {
		m.attachments = nil
		m.transcript.AddSystem("Attachments cleared.")
		return
	}
	a, err := attach.Load(path)
	if err != nil {
		m.transcript.AddError("system", err.Error(), false)
		return
	}
	m.attachments = append(m.attachments, a)
	m.transcript.AddSystem(fmt.Sprintf("Attached %s (~%d tokens), sent with the next prompt.",
		filepath.Base(a.Path), models.EstimateTokens(a.Content)))
}

// takeAttachments prepends the queued files to prompt and clears the queue.
func (m *Model) takeAttachments(prompt string) string {
	full := attach.Prepend(prompt, m.attachments...)
	m.attachments = nil
	return full
}

// showBattle prints both answers under blind labels.
func (m *Model) showBattle(b arena.Battle) {
	for i, label := range []string{"Model A", "Model B"} {
		r := b.Responses[i]
		m.transcript.Entries = append(m.transcript.Entries, Entry{
			Source:    label,
			Content:   r.Content,
			Meta:      responseMeta(r.Latency, r.TokenCount, r.Cost),
			Timestamp: b.CreatedAt,
			Markdown:  true,
		})
	}
	m.transcript.AddSystem("Which answer is better? /vote a, /vote b or /vote draw")
}

func (m *Model) vote(side string) {
	latest, ok := m.deps.Arena.Latest()
	if !ok {
		m.transcript.AddError("system", "no battle to vote on", false)
		return
	}

	var (
		b       arena.Battle
		ratings rating.Ratings
		err     error
	)
	switch side {
	case "a":
		b, ratings, err = m.deps.Arena.Vote(latest.ID, latest.Models[0])
	case "b":
		b, ratings, err = m.deps.Arena.Vote(latest.ID, latest.Models[1])
	default:
		b, ratings, err = m.deps.Arena.Draw(latest.ID)
	}
	if err != nil {
		m.transcript.AddError("system", err.Error(), false)
		return
	}

	result := "It's a draw."
	if b.WinnerID != "" {
		result = m.transcript.sourceName(b.WinnerID) + " wins."
	}
	m.transcript.AddSystem(fmt.Sprintf("%s Model A was %s (now %d), Model B was %s (now %d).",
		result,
		m.transcript.sourceName(b.Models[0]), ratings[b.Models[0]],
		m.transcript.sourceName(b.Models[1]), ratings[b.Models[1]]))
}

func (m *Model) selectModels(ids []string) {
	if len(ids) > 0 {
		if err := m.deps.Session.SetModels(ids); err != nil {
			m.transcript.AddError("system", err.Error(), false)
			return
		}
		m.transcript.AddSystem("Now asking " + strings.Join(ids, ", "))
		return
	}

	selected := make(map[string]bool)
	for _, id := range m.deps.Session.Models() {
		selected[id] = true
	}
	var sb strings.Builder
	sb.WriteString("Available models:\n")
	for _, info := range m.deps.Catalog.Infos() {
		mark := " "
		if selected[info.ID] {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s %-14s %-10s $%.4f/$%.4f per 1K  %s\n",
			mark, info.ID, info.Provider, info.InputCostPer1K, info.OutputCostPer1K, info.Description)
	}
	m.transcript.AddSystem(strings.TrimRight(sb.String(), "\n"))
}

func (m *Model) exportCurrent(format string) {
	f, err := export.ParseFormat(format)
	if err != nil {
		m.transcript.AddError("system", err.Error(), false)
		return
	}
	conv, ok := m.deps.Session.Current()
	if !ok {
		m.transcript.AddError("system", "nothing to export yet", false)
		return
	}
	path, err := export.Write(conv, f, m.deps.ExportDir)
	if err != nil {
		m.transcript.AddError("system", err.Error(), false)
		return
	}
	m.transcript.AddSystem("Exported to " + path)
}

func (m *Model) feedback(c commands.Feedback) {
	if m.deps.Feedback == nil {
		m.transcript.AddError("system", "feedback needs storage enabled", false)
		return
	}
	if _, err := m.deps.Feedback.AddFeedback(db.Feedback{Type: c.Kind, Content: c.Text}); err != nil {
		m.transcript.AddError("system", err.Error(), false)
		return
	}
	m.transcript.AddSystem("Thanks for the feedback!")
}

func (m *Model) openHistory() {
	m.history.Load(m.deps.Session.Conversations(), m.deps.Arena.Battles())
	m.mode = ViewHistory
}

func (m Model) paneSize() (int, int) {
	return max(m.width-sidebarWidth-4, 20), max(m.height-7, 5)
}

func (m *Model) refresh() {
	if m.view != nil {
		m.view.Refresh()
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.mode {
	case ViewHelp:
		return m.renderHelp()
	case ViewHistory:
		return m.history.Render(m.width, m.height)
	case ViewRankings:
		return RenderRankings(m.deps.Arena.Ladder().Leaderboard(), m.width, m.height)
	}

	title := "New conversation"
	if conv, ok := m.deps.Session.Current(); ok {
		title = conv.Title
	}
	header := TitleStyle.Render("MODEL ARENA") + "  " + title +
		DimStyle.Render(fmt.Sprintf("  spend $%.4f", m.deps.Session.Spend()))

	_, h := m.paneSize()
	chatBox := ActiveBox.Render(m.view.Viewport.View())
	sidebar := InactiveBox.Width(sidebarWidth).Height(h).Render(m.transcript.RenderModelStatus(m.deps.Session.Models()))
	body := lipgloss.JoinHorizontal(lipgloss.Top, chatBox, sidebar)

	footer := DimStyle.Render("Enter: send | F1: help | Alt+H: history | Alt+R: rankings | Ctrl+C: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		InactiveBox.Width(m.width-2).Render(m.input.View()),
		footer,
	)
}
