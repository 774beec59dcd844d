package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"graphchat/internal/api"
)

type fakeFetcher struct {
	snap  api.StatsSnapshot
	err   error
	calls int
}

func (f *fakeFetcher) GetStats(context.Context) (api.StatsSnapshot, error) {
	f.calls++
	return f.snap, f.err
}

func TestLoad(t *testing.T) {
	f := &fakeFetcher{snap: api.StatsSnapshot{EntityCount: 14541, FactCount: 310116}}

	snap := Load(context.Background(), f, nil)

	assert.Equal(t, api.StatsSnapshot{EntityCount: 14541, FactCount: 310116}, snap)
	assert.Equal(t, 1, f.calls)
}

func TestLoad_FailureDegradesToZero(t *testing.T) {
	f := &fakeFetcher{err: &api.TransportError{Op: "get stats", Err: errors.New("refused")}}

	snap := Load(context.Background(), f, nil)

	assert.Equal(t, api.StatsSnapshot{}, snap)
}
