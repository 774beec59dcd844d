// Package stats loads the backend's aggregate counters once at session
// start. A failed fetch degrades to a zero-valued snapshot; it never
// blocks session initialization and is never retried.
package stats

import (
	"context"

	"go.uber.org/zap"

	"graphchat/internal/api"
)

// Fetcher is the slice of the API client the loader needs.
type Fetcher interface {
	GetStats(ctx context.Context) (api.StatsSnapshot, error)
}

// Load fetches the snapshot, swallowing transport failures. The zero
// snapshot is a normal, recoverable outcome; later query failures do not
// trigger a re-fetch.
func Load(ctx context.Context, client Fetcher, log *zap.Logger) api.StatsSnapshot {
	if log == nil {
		log = zap.NewNop()
	}
	snap, err := client.GetStats(ctx)
	if err != nil {
		log.Warn("stats fetch failed, using zero snapshot", zap.Error(err))
		return api.StatsSnapshot{}
	}
	log.Debug("stats loaded",
		zap.Int("entities", snap.EntityCount),
		zap.Int("facts", snap.FactCount))
	return snap
}
