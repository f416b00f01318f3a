package leader

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/metrics"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// State manages the cluster_state singleton rows that back the cluster-wide
// monotonic counters.
type State struct {
	db *database.Adapter
}

// NewState creates the state accessor over the shared persistence adapter.
func NewState(db *database.Adapter) *State {
	return &State{db: db}
}

// Install creates the cluster_state table. Idempotent.
func (s *State) Install(ctx context.Context) error {
	return s.db.Install(ctx, "cluster_state", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS cluster_state
			(
				key character varying(64) NOT NULL,
				i bigint DEFAULT NULL,
				j jsonb DEFAULT NULL,
				PRIMARY KEY (key)
			)`)
		return err
	})
}

// Next atomically increments the counter stored under key and returns the
// post-increment value. The adapter's per-call transaction plus the upsert
// give a serializable read-modify-write: concurrent callers observe strictly
// increasing, unique values.
func (s *State) Next(ctx context.Context, key types.ClusterStateKey) (int64, error) {
	var value int64
	err := s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, `
			INSERT INTO cluster_state (key, i) VALUES ($1, 1)
			ON CONFLICT (key) DO UPDATE SET i = cluster_state.i + 1
			RETURNING i`, string(key)).Scan(&value)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	metrics.IDsIssued.WithLabelValues(string(key)).Inc()
	return value, nil
}
