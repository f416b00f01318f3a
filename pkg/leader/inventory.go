package leader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// Inventory persists the cluster's node records in the last_seen table.
type Inventory struct {
	db *database.Adapter
}

// NewInventory creates an inventory over the shared persistence adapter.
func NewInventory(db *database.Adapter) *Inventory {
	return &Inventory{db: db}
}

// Install creates the last_seen table and its indexes. Idempotent.
func (inv *Inventory) Install(ctx context.Context) error {
	return inv.db.Install(ctx, "last_seen", func(tx *sqlx.Tx) error {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS last_seen (
				i SERIAL PRIMARY KEY,
				name VARCHAR(128) NOT NULL,
				type VARCHAR(32) NOT NULL,
				key VARCHAR(128) NOT NULL,
				last_update BIGINT NOT NULL DEFAULT 0,
				host VARCHAR(256),
				port INTEGER
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_last_seen_key ON last_seen(key)`,
			`CREATE INDEX IF NOT EXISTS idx_last_seen_last_update ON last_seen(last_update)`,
			`CREATE INDEX IF NOT EXISTS idx_last_seen_type_last_update ON last_seen(type, last_update)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update upserts a node record by instance key and stamps last_update with
// the current unix time.
func (inv *Inventory) Update(ctx context.Context, b types.Beacon) error {
	now := time.Now().Unix()
	return inv.db.Execute(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO last_seen (name, type, key, last_update, host, port)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0))
			ON CONFLICT (key) DO UPDATE SET
				name = EXCLUDED.name,
				type = EXCLUDED.type,
				last_update = EXCLUDED.last_update,
				host = EXCLUDED.host,
				port = EXCLUDED.port`,
			b.NodeName, b.NodeType, b.InstanceKey, now, b.Host, b.Port)
		if err != nil {
			return fmt.Errorf("failed to update node %s: %w", b.NodeName, err)
		}
		return nil
	})
}

// List returns the node records whose last beacon is not older than
// aliveTimeout seconds, newest first.
func (inv *Inventory) List(ctx context.Context, aliveTimeout int64) ([]types.Node, error) {
	now := time.Now().Unix()
	cutoff := now - aliveTimeout

	var nodes []types.Node
	err := inv.db.Execute(ctx, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, `
			SELECT i, name, type, key, last_update,
			       COALESCE(host, '') AS host, COALESCE(port, 0) AS port
			FROM last_seen
			WHERE last_update >= $1
			ORDER BY last_update DESC`, cutoff)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var n types.Node
			if err := rows.StructScan(&n); err != nil {
				return err
			}
			n.AgeSeconds = now - n.LastSeen
			nodes = append(nodes, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}

// GetByKey returns the node with the given instance key.
func (inv *Inventory) GetByKey(ctx context.Context, key string) (*types.Node, error) {
	var n types.Node
	err := inv.db.Execute(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, `
			SELECT i, name, type, key, last_update,
			       COALESCE(host, '') AS host, COALESCE(port, 0) AS port
			FROM last_seen
			WHERE key = $1`, key).StructScan(&n)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node by key %s: %w", key, err)
	}
	return &n, nil
}

// DeleteOlderThan removes records whose last beacon is older than
// maxAgeSeconds and reports how many rows went away.
func (inv *Inventory) DeleteOlderThan(ctx context.Context, maxAgeSeconds int64) (int64, error) {
	cutoff := time.Now().Unix() - maxAgeSeconds
	var deleted int64
	err := inv.db.Execute(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM last_seen WHERE last_update < $1`, cutoff)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old records: %w", err)
	}
	return deleted, nil
}

// Statistics summarizes the inventory table.
type Statistics struct {
	TotalRecords     int64            `json:"total_records"`
	RecordsByType    map[string]int64 `json:"records_by_type"`
	OldestTimestamp  int64            `json:"oldest_timestamp"`
	NewestTimestamp  int64            `json:"newest_timestamp"`
	CurrentTimestamp int64            `json:"current_timestamp"`
}

// Stats returns inventory counters used by maintenance tooling.
func (inv *Inventory) Stats(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		RecordsByType:    make(map[string]int64),
		CurrentTimestamp: time.Now().Unix(),
	}
	err := inv.db.Execute(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx,
			`SELECT COUNT(*) FROM last_seen`).Scan(&stats.TotalRecords); err != nil {
			return err
		}

		rows, err := tx.QueryxContext(ctx,
			`SELECT type, COUNT(*) FROM last_seen GROUP BY type`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var typ string
			var count int64
			if err := rows.Scan(&typ, &count); err != nil {
				return err
			}
			stats.RecordsByType[typ] = count
		}
		if err := rows.Err(); err != nil {
			return err
		}

		return tx.QueryRowxContext(ctx,
			`SELECT COALESCE(MIN(last_update), 0), COALESCE(MAX(last_update), 0) FROM last_seen`).
			Scan(&stats.OldestTimestamp, &stats.NewestTimestamp)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	return stats, nil
}
