// Package query orchestrates one query round trip at a time: it guards
// submissions behind the conversation store's pending gate, runs the
// network call off the control thread, and applies exactly one terminal
// state transition per submission.
package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"graphchat/internal/api"
	"graphchat/internal/conversation"
)

// ErrorText is the one user-facing sentence shown when a round trip
// fails. Raw error detail never reaches the conversation.
const ErrorText = "The knowledge graph backend is not reachable right now. Please check that the server is running and try again."

// Querier is the slice of the API client the controller needs.
type Querier interface {
	SubmitQuery(ctx context.Context, text string, topK int) (api.QueryResult, error)
}

// Controller drives the Idle/AwaitingResponse state machine. It holds no
// state of its own; the store's pending gate is the state.
type Controller struct {
	store  *conversation.Store
	client Querier
	topK   int
	log    *zap.Logger
}

// NewController wires a controller to its store and transport. topK
// defaults to api.DefaultTopK when non-positive.
func NewController(store *conversation.Store, client Querier, topK int, log *zap.Logger) *Controller {
	if topK <= 0 {
		topK = api.DefaultTopK
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{store: store, client: client, topK: topK, log: log}
}

// RoundTrip is one accepted submission, ready to execute. Execute never
// touches the store; the transition it produces is applied by Resolve.
type RoundTrip struct {
	text string
	topK int
	ctrl *Controller
}

// Completion is the single state-transition event produced by a finished
// round trip.
type Completion struct {
	result api.QueryResult
	err    error
}

// Err exposes the failure, if any, for logging at the boundary.
func (c Completion) Err() error { return c.err }

// Submit attempts the Idle -> AwaitingResponse transition. Whitespace-only
// input and submissions while a round trip is outstanding are silent
// no-ops (ok == false, nothing appended, nothing toggled). On acceptance
// the user turn is appended, the draft is cleared, and the gate closes.
func (c *Controller) Submit(rawText string) (*RoundTrip, bool) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, false
	}
	if !c.store.BeginPending() {
		c.log.Debug("submission ignored, round trip outstanding")
		return nil, false
	}
	c.store.AppendUserMessage(text)
	c.store.SetDraft("")
	c.log.Debug("query accepted", zap.Int("length", len(text)))
	return &RoundTrip{text: text, topK: c.topK, ctrl: c}, true
}

// Execute performs the network call and packages the outcome. Call it off
// the control thread; feed the Completion back through Resolve exactly
// once.
func (rt *RoundTrip) Execute(ctx context.Context) Completion {
	result, err := rt.ctrl.client.SubmitQuery(ctx, rt.text, rt.topK)
	return Completion{result: result, err: err}
}

// Resolve applies the AwaitingResponse -> Idle transition. Success appends
// the answer turn; any failure, transport or parse alike, appends the
// fixed error turn. Either append reopens the gate.
func (c *Controller) Resolve(comp Completion) {
	if comp.err != nil {
		c.log.Warn("query round trip failed", zap.Error(comp.err))
		c.store.AppendErrorMessage(ErrorText)
		return
	}
	c.store.AppendAssistantMessage(comp.result)
}

// Run is the synchronous convenience used outside the TUI: one full
// round trip, Submit through Resolve. ok mirrors Submit.
func (c *Controller) Run(ctx context.Context, rawText string) bool {
	rt, ok := c.Submit(rawText)
	if !ok {
		return false
	}
	c.Resolve(rt.Execute(ctx))
	return true
}
