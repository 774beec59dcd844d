// Test utilities for TUI testing: fakes, a model builder, and helpers
// for driving the Update loop without a terminal.
package chat

import (
	"context"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"graphchat/cmd/graphchat/ui"
	"graphchat/internal/api"
	"graphchat/internal/config"
	"graphchat/internal/conversation"
	"graphchat/internal/query"
)

// fakeBackend scripts both the query and stats endpoints.
type fakeBackend struct {
	mu sync.Mutex

	result api.QueryResult
	err    error
	snap   api.StatsSnapshot
	statsE error

	queries []string
	topKs   []int
}

func (f *fakeBackend) SubmitQuery(_ context.Context, text string, topK int) (api.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	f.topKs = append(f.topKs, topK)
	return f.result, f.err
}

func (f *fakeBackend) GetStats(context.Context) (api.StatsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.statsE
}

func (f *fakeBackend) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// TestModelOption configures a test model.
type TestModelOption func(*Model)

// WithSize sets the terminal dimensions.
func WithSize(width, height int) TestModelOption {
	return func(m *Model) {
		m.width = width
		m.height = height
		m.viewport = viewport.New(width-4, height-8)
		m.textarea.SetWidth(width - 8)
	}
}

// WithGreeting replaces the seeded greeting (and rebuilds the store and
// controller around it).
func WithGreeting(greeting string) TestModelOption {
	return func(m *Model) {
		m.store = conversation.NewStore(greeting)
	}
}

// NewTestModel creates a Model wired to a fake backend, ready to render
// without a real terminal.
func NewTestModel(opts ...TestModelOption) (Model, *fakeBackend) {
	backend := &fakeBackend{
		result: api.QueryResult{Answer: "Test answer.", EntitiesFound: []string{"TEST"}, NumTriplets: 1},
	}

	ta := textarea.New()
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		textarea:     ta,
		viewport:     viewport.New(80, 20),
		spinner:      sp,
		styles:       ui.NewStyles(ui.LightTheme()),
		store:        conversation.NewStore(config.DefaultGreeting),
		fetcher:      backend,
		cfg:          config.Default(),
		log:          zap.NewNop(),
		width:        100,
		height:       40,
		ready:        true,
		shutdownOnce: &sync.Once{},
		rootCtx:      ctx,
		rootCancel:   cancel,
	}

	for _, opt := range opts {
		opt(&m)
	}

	// The controller binds to whatever store the options left in place.
	m.controller = query.NewController(m.store, backend, m.cfg.Query.TopK, m.log)

	return m, backend
}

// SimulateInput simulates typing text and pressing Enter.
func SimulateInput(m Model, input string) (Model, tea.Cmd) {
	m.textarea.SetValue(input)
	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return newModel.(Model), cmd
}

// drainCmd executes a command tree and returns every produced message,
// expanding batches.
func drainCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drainCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// pumpQuery runs the submit command synchronously and feeds the
// completion back through Update, as the bubbletea runtime would.
func pumpQuery(m Model, cmd tea.Cmd) Model {
	for _, msg := range drainCmd(cmd) {
		if done, ok := msg.(queryDoneMsg); ok {
			newModel, _ := m.Update(done)
			m = newModel.(Model)
		}
	}
	return m
}
