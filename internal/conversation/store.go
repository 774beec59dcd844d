// Package conversation owns the session's conversational state: the
// append-only message log, the single pending gate, the draft input, and
// the stats snapshot shown in the header. The store is the one source of
// truth the presentation layer observes; nothing else mutates it except
// the query controller and direct draft edits.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"graphchat/internal/api"
)

// Role attributes a turn to one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable conversational turn. Entities is empty for
// user turns and error turns; FactCount is meaningful only on successful
// assistant turns.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Entities  []string
	FactCount int
	IsError   bool
	Time      time.Time
}

// Store is the aggregate root for one session. All methods are safe for
// concurrent use; bubbletea completes commands on goroutines even though
// the Update loop itself is single-threaded.
type Store struct {
	mu       sync.Mutex
	messages []Message
	pending  bool
	draft    string
	stats    api.StatsSnapshot

	// onChange fires after every mutation so the view re-renders without
	// polling. Invoked outside the lock; set once before the session
	// starts.
	onChange func()
}

// NewStore seeds a session with exactly one assistant greeting and the
// gate open.
func NewStore(greeting string) *Store {
	s := &Store{}
	s.messages = append(s.messages, Message{
		ID:       uuid.NewString(),
		Role:     RoleAssistant,
		Text:     greeting,
		Entities: []string{},
		Time:     time.Now(),
	})
	return s
}

// SetOnChange registers the observer invoked after each mutation.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Messages returns a copy of the ordered message log.
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Last returns the most recent turn. ok is false only for an empty store,
// which cannot happen after NewStore.
func (s *Store) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Pending reports whether a query round trip is in flight.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// BeginPending flips the gate closed. It refuses (returns false) when a
// round trip is already outstanding; this check-and-set is the session's
// sole mutual-exclusion discipline.
func (s *Store) BeginPending() bool {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return false
	}
	s.pending = true
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return true
}

// AppendUserMessage appends one user turn. The caller (the controller)
// must hold the pending gate open before calling.
func (s *Store) AppendUserMessage(text string) {
	s.mu.Lock()
	s.messages = append(s.messages, Message{
		ID:       uuid.NewString(),
		Role:     RoleUser,
		Text:     text,
		Entities: []string{},
		Time:     time.Now(),
	})
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// AppendAssistantMessage appends the answer turn for a successful round
// trip and reopens the gate. Assistant appends are the only paths that
// clear pending.
func (s *Store) AppendAssistantMessage(result api.QueryResult) {
	s.mu.Lock()
	entities := make([]string, len(result.EntitiesFound))
	copy(entities, result.EntitiesFound)
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Text:      result.Answer,
		Entities:  entities,
		FactCount: result.NumTriplets,
		Time:      time.Now(),
	})
	s.pending = false
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// AppendErrorMessage appends an error-flagged assistant turn and reopens
// the gate.
func (s *Store) AppendErrorMessage(text string) {
	s.mu.Lock()
	s.messages = append(s.messages, Message{
		ID:       uuid.NewString(),
		Role:     RoleAssistant,
		Text:     text,
		Entities: []string{},
		IsError:  true,
		Time:     time.Now(),
	})
	s.pending = false
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Draft returns the staged, not-yet-submitted input.
func (s *Store) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// SetDraft replaces the staged input. Unlike the message log the draft
// mutates freely.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	s.draft = text
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Stats returns the snapshot loaded at session start.
func (s *Store) Stats() api.StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// SetStats records the one-time stats snapshot. Kept separate from the
// message history.
func (s *Store) SetStats(snap api.StatsSnapshot) {
	s.mu.Lock()
	s.stats = snap
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
