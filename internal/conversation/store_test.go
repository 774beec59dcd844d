package conversation

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphchat/internal/api"
)

const greeting = "Hello! Ask me anything about the knowledge graph."

func TestNewStore_SeedsGreeting(t *testing.T) {
	s := NewStore(greeting)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, greeting, msgs[0].Text)
	assert.False(t, msgs[0].IsError)
	assert.NotEmpty(t, msgs[0].ID)
	assert.False(t, s.Pending())
}

func TestStore_AppendOnlyOrdering(t *testing.T) {
	s := NewStore(greeting)

	require.True(t, s.BeginPending())
	s.AppendUserMessage("Who is Barack Obama?")
	s.AppendAssistantMessage(api.QueryResult{
		Answer:        "Barack Obama is...",
		EntitiesFound: []string{"Barack Obama", "United States"},
		NumTriplets:   10,
	})

	want := []Message{
		{Role: RoleAssistant, Text: greeting, Entities: []string{}},
		{Role: RoleUser, Text: "Who is Barack Obama?", Entities: []string{}},
		{
			Role:      RoleAssistant,
			Text:      "Barack Obama is...",
			Entities:  []string{"Barack Obama", "United States"},
			FactCount: 10,
		},
	}
	ignore := cmpopts.IgnoreFields(Message{}, "ID", "Time")
	if diff := cmp.Diff(want, s.Messages(), ignore); diff != "" {
		t.Errorf("message log mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, s.Pending())
}

func TestStore_BeginPendingGate(t *testing.T) {
	s := NewStore(greeting)

	require.True(t, s.BeginPending())
	assert.True(t, s.Pending())

	// Second check-and-set must refuse while the first is outstanding.
	assert.False(t, s.BeginPending())

	s.AppendErrorMessage("backend gone")
	assert.False(t, s.Pending())

	// Gate reopens after the terminal append.
	assert.True(t, s.BeginPending())
}

func TestStore_AssistantAppendClearsPending(t *testing.T) {
	s := NewStore(greeting)
	require.True(t, s.BeginPending())

	s.AppendAssistantMessage(api.QueryResult{Answer: "a", EntitiesFound: []string{}})
	assert.False(t, s.Pending())
}

func TestStore_ErrorTurnShape(t *testing.T) {
	s := NewStore(greeting)
	require.True(t, s.BeginPending())
	s.AppendErrorMessage("backend not reachable")

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
	assert.True(t, last.IsError)
	assert.Empty(t, last.Entities)
	assert.NotNil(t, last.Entities)
	assert.Zero(t, last.FactCount)
}

func TestStore_MessagesReturnsCopy(t *testing.T) {
	s := NewStore(greeting)

	msgs := s.Messages()
	msgs[0].Text = "mutated"

	fresh := s.Messages()
	assert.Equal(t, greeting, fresh[0].Text)
}

func TestStore_AssistantEntitiesCopied(t *testing.T) {
	s := NewStore(greeting)
	require.True(t, s.BeginPending())

	entities := []string{"A", "B"}
	s.AppendAssistantMessage(api.QueryResult{Answer: "x", EntitiesFound: entities})
	entities[0] = "mutated"

	last, _ := s.Last()
	assert.Equal(t, "A", last.Entities[0])
}

func TestStore_Draft(t *testing.T) {
	s := NewStore(greeting)

	s.SetDraft("What cities are in France?")
	assert.Equal(t, "What cities are in France?", s.Draft())

	// Draft edits never touch the log or the gate.
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Pending())
}

func TestStore_Stats(t *testing.T) {
	s := NewStore(greeting)
	assert.Equal(t, api.StatsSnapshot{}, s.Stats())

	s.SetStats(api.StatsSnapshot{EntityCount: 7, FactCount: 42})
	assert.Equal(t, api.StatsSnapshot{EntityCount: 7, FactCount: 42}, s.Stats())
	assert.Equal(t, 1, s.Len())
}

func TestStore_OnChangeFiresPerMutation(t *testing.T) {
	s := NewStore(greeting)

	var mu sync.Mutex
	calls := 0
	s.SetOnChange(func() {
		mu.Lock()
		calls++
		// The observer must be able to read the store.
		_ = s.Len()
		mu.Unlock()
	})

	require.True(t, s.BeginPending())
	s.AppendUserMessage("q")
	s.AppendAssistantMessage(api.QueryResult{Answer: "a", EntitiesFound: []string{}})
	s.SetDraft("next")
	s.SetStats(api.StatsSnapshot{EntityCount: 1})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, calls)
}

func TestStore_ConcurrentReadsDuringAppend(t *testing.T) {
	s := NewStore(greeting)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Messages()
				_ = s.Pending()
				_, _ = s.Last()
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if s.BeginPending() {
			s.AppendUserMessage("q")
			s.AppendAssistantMessage(api.QueryResult{Answer: "a", EntitiesFound: []string{}})
		}
	}
	wg.Wait()

	// 50 completed round trips on top of the seed.
	assert.Equal(t, 101, s.Len())
}
