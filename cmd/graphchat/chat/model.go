// Package chat provides the interactive TUI session for GraphChat.
// The chat functionality is split across files:
//   - model.go: Model, Init, Update loop (this file)
//   - view.go: Rendering functions
//   - suggestions.go: Canned example questions
package chat

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"graphchat/cmd/graphchat/ui"
	"graphchat/internal/api"
	"graphchat/internal/config"
	"graphchat/internal/conversation"
	"graphchat/internal/query"
	"graphchat/internal/stats"
)

// Model is the main model for the interactive chat session.
type Model struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// Domain state
	store      *conversation.Store
	controller *query.Controller
	fetcher    stats.Fetcher

	cfg config.Config
	log *zap.Logger

	// Layout
	width  int
	height int
	ready  bool

	suggestIdx int

	// Shutdown coordination. Pointers so that bubbletea's value copies
	// of the model share one shutdown state.
	shutdownOnce *sync.Once
	rootCtx      context.Context
	rootCancel   context.CancelFunc
}

// Messages for tea updates.
type (
	statsLoadedMsg api.StatsSnapshot
	queryDoneMsg   struct{ comp query.Completion }
)

// NewModel wires the chat model from its collaborators. client serves
// both the query round trips and the startup stats fetch.
func NewModel(cfg config.Config, client *api.Client, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask about the knowledge graph... (Enter to send, Tab for examples, Ctrl+C to exit)"
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))
	sp.Style = styles.Spinner

	store := conversation.NewStore(cfg.UI.Greeting)
	controller := query.NewController(store, client, cfg.Query.TopK, log)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		textarea:     ta,
		spinner:      sp,
		styles:       styles,
		store:        store,
		controller:   controller,
		fetcher:      client,
		cfg:          cfg,
		log:          log,
		shutdownOnce: &sync.Once{},
		rootCtx:      ctx,
		rootCancel:   cancel,
	}
}

// Shutdown cancels all in-flight requests. Safe to call multiple times;
// call before tea.Quit.
func (m Model) Shutdown() {
	m.shutdownOnce.Do(func() {
		if m.rootCancel != nil {
			m.rootCancel()
		}
	})
}

// Init kicks off the cursor blink, spinner, and the one-time stats load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.loadStats(),
	)
}

// loadStats fetches the graph counters once at session start. Failures
// degrade to a zero snapshot inside stats.Load.
func (m Model) loadStats() tea.Cmd {
	return func() tea.Msg {
		return statsLoadedMsg(stats.Load(m.rootCtx, m.fetcher, m.log))
	}
}

// runQuery executes one round trip off the UI goroutine and delivers
// its completion as a single message.
func (m Model) runQuery(rt *query.RoundTrip) tea.Cmd {
	return func() tea.Msg {
		return queryDoneMsg{comp: rt.Execute(m.rootCtx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.Shutdown()
			return m, tea.Quit

		case tea.KeyEnter:
			return m.handleSubmit()

		case tea.KeyTab:
			// Cycle an example question into the draft. Never submits.
			next := m.nextSuggestion()
			m.textarea.SetValue(next)
			m.textarea.CursorEnd()
			m.store.SetDraft(next)
			return m, nil
		}

		// Draft stays editable while a response is pending; only
		// submission is gated.
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.store.SetDraft(m.textarea.Value())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.store.Pending() {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case statsLoadedMsg:
		m.store.SetStats(api.StatsSnapshot(msg))

	case queryDoneMsg:
		m.controller.Resolve(msg.comp)
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// handleSubmit routes the draft through the controller. Empty input and
// input while a response is pending are silent no-ops.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	rt, ok := m.controller.Submit(m.textarea.Value())
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.spinner.Tick,
		m.runQuery(rt),
	)
}

// layout sizes the viewport, textarea, and markdown renderer to the
// current terminal dimensions.
func (m *Model) layout() {
	headerHeight := 3
	footerHeight := 2
	inputHeight := 3

	chatWidth := m.width - 4
	if chatWidth < 1 {
		chatWidth = 1
	}
	chatHeight := m.height - headerHeight - footerHeight - inputHeight
	if chatHeight < 1 {
		chatHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, chatHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = chatHeight
	}
	m.textarea.SetWidth(chatWidth - 4)

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-4),
	)
}

// RunChat starts the interactive session and blocks until it exits.
func RunChat(cfg config.Config, client *api.Client, log *zap.Logger) error {
	model := NewModel(cfg, client, log)
	defer model.Shutdown()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
