package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// Store persists signaling events in the signaling_events table. EIDs are
// assigned by the table's sequence, so they strictly increase in insert
// order.
type Store struct {
	db *database.Adapter
}

// NewStore creates the event store over the shared persistence adapter.
func NewStore(db *database.Adapter) *Store {
	return &Store{db: db}
}

// Install creates the signaling_events table and its indexes. Idempotent.
func (s *Store) Install(ctx context.Context) error {
	return s.db.Install(ctx, "signaling_events", func(tx *sqlx.Tx) error {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS signaling_events
			(
				eid bigserial NOT NULL,
				type character varying(256) NOT NULL,
				payload jsonb,
				affected jsonb,
				ctime timestamp without time zone NOT NULL DEFAULT now(),
				owner character varying(256) NOT NULL,
				tags text[],
				PRIMARY KEY (eid)
			)`,
			`CREATE INDEX IF NOT EXISTS "byCtime" ON signaling_events USING btree (ctime)`,
			`CREATE INDEX IF NOT EXISTS "byOwner" ON signaling_events USING btree (owner)`,
			`CREATE INDEX IF NOT EXISTS "byType" ON signaling_events USING btree (type)`,
			`CREATE INDEX IF NOT EXISTS "byTags" ON signaling_events USING gin (tags)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// ErrValidation is returned when a filter or event field contains a
// forbidden character sequence.
var ErrValidation = errors.New("validation failed")

// ValidateToken rejects values that could escape a SQL literal. Event types,
// owners, tags and affected entries all pass through here before they are
// used in a query.
func ValidateToken(v string) error {
	for _, marker := range []string{";", "--", "/*", "*/", "'", `"`, `\`} {
		if strings.Contains(v, marker) {
			return fmt.Errorf("%w: value contains forbidden sequence %q", ErrValidation, marker)
		}
	}
	return nil
}

func validateTokens(values []string) error {
	for _, v := range values {
		if err := ValidateToken(v); err != nil {
			return err
		}
	}
	return nil
}

// arrayLiteral renders a validated string slice as a Postgres array literal.
func arrayLiteral(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// CreateEvent inserts one event and returns its assigned eid. The event's
// ctime is the given timestamp; a zero source is stored under the ownerless
// sentinel.
func (s *Store) CreateEvent(ctx context.Context, e *types.Event) (int64, error) {
	if e.Type == "" {
		return 0, fmt.Errorf("event type must not be empty")
	}
	if err := ValidateToken(string(e.Type)); err != nil {
		return 0, fmt.Errorf("invalid event type: %w", err)
	}
	owner := e.Source
	if owner == "" {
		owner = types.OwnerlessSource
	}
	if err := ValidateToken(owner); err != nil {
		return 0, fmt.Errorf("invalid source: %w", err)
	}
	if err := validateTokens(e.Tags); err != nil {
		return 0, fmt.Errorf("invalid tags: %w", err)
	}
	if err := validateTokens(e.Affected); err != nil {
		return 0, fmt.Errorf("invalid affected list: %w", err)
	}

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode payload: %w", err)
	}
	// An absent affected list is stored as SQL NULL, never as a jsonb null
	// scalar, so the distinct-affected scan can filter on IS NOT NULL.
	var affected any
	if len(e.Affected) > 0 {
		raw, err := json.Marshal(e.Affected)
		if err != nil {
			return 0, fmt.Errorf("failed to encode affected list: %w", err)
		}
		affected = string(raw)
	}

	ctime := e.Time()
	if e.Timestamp == 0 {
		ctime = time.Now()
	}

	var eid int64
	err = s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, `
			INSERT INTO signaling_events (type, payload, affected, ctime, owner, tags)
			VALUES ($1, $2::jsonb, $3::jsonb, $4, $5, $6::text[])
			RETURNING eid`,
			string(e.Type), string(payload), affected, ctime, owner,
			arrayLiteral(e.Tags)).Scan(&eid)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store event: %w", err)
	}
	e.EID = eid
	e.Source = owner
	return eid, nil
}

// BrowseQuery narrows a history scan. Zero fields do not filter; a zero
// Limit returns the full match set.
type BrowseQuery struct {
	Since    float64  `json:"timestamp,omitempty"`
	Types    []string `json:"event_types,omitempty"`
	Owners   []string `json:"sources,omitempty"`
	Affected []string `json:"affected,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// Browse scans the event history newest first.
func (s *Store) Browse(ctx context.Context, q BrowseQuery) ([]types.Event, error) {
	if err := validateTokens(q.Types); err != nil {
		return nil, fmt.Errorf("invalid types filter: %w", err)
	}
	if err := validateTokens(q.Owners); err != nil {
		return nil, fmt.Errorf("invalid owners filter: %w", err)
	}
	if err := validateTokens(q.Affected); err != nil {
		return nil, fmt.Errorf("invalid affected filter: %w", err)
	}
	if err := validateTokens(q.Tags); err != nil {
		return nil, fmt.Errorf("invalid tags filter: %w", err)
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Since > 0 {
		sec := int64(q.Since)
		nsec := int64((q.Since - float64(sec)) * float64(time.Second))
		where = append(where, "ctime >= "+arg(time.Unix(sec, nsec)))
	}
	if len(q.Types) > 0 {
		where = append(where, "type = ANY("+arg(arrayLiteral(q.Types))+"::text[])")
	}
	if len(q.Owners) > 0 {
		where = append(where, "owner = ANY("+arg(arrayLiteral(q.Owners))+"::text[])")
	}
	if len(q.Affected) > 0 {
		raw, err := json.Marshal(q.Affected)
		if err != nil {
			return nil, err
		}
		where = append(where, "affected @> "+arg(string(raw))+"::jsonb")
	}
	if len(q.Tags) > 0 {
		where = append(where, "tags && "+arg(arrayLiteral(q.Tags))+"::text[]")
	}

	query := `SELECT eid, type, payload, affected,
		extract(epoch FROM ctime) AS ts, owner, array_to_json(tags)::text AS tags
		FROM signaling_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY ctime DESC"
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}

	var events []types.Event
	err := s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e        types.Event
				payload  []byte
				affected []byte
				tags     []byte
			)
			if err := rows.Scan(&e.EID, &e.Type, &payload, &affected,
				&e.Timestamp, &e.Source, &tags); err != nil {
				return err
			}
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &e.Payload); err != nil {
					return err
				}
			}
			if len(affected) > 0 {
				if err := json.Unmarshal(affected, &e.Affected); err != nil {
					return err
				}
			}
			if len(tags) > 0 {
				if err := json.Unmarshal(tags, &e.Tags); err != nil {
					return err
				}
			}
			events = append(events, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to browse events: %w", err)
	}
	return events, nil
}

// DistinctTypes returns every event type seen in the history.
func (s *Store) DistinctTypes(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT type FROM signaling_events ORDER BY type`)
}

// DistinctOwners returns every owner seen in the history.
func (s *Store) DistinctOwners(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT owner FROM signaling_events ORDER BY owner`)
}

// DistinctTags returns every tag seen in the history.
func (s *Store) DistinctTags(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `
		SELECT DISTINCT unnest(tags) AS tag FROM signaling_events ORDER BY tag`)
}

// DistinctAffected returns every affected entry seen in the history.
func (s *Store) DistinctAffected(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `
		SELECT DISTINCT jsonb_array_elements_text(affected) AS a
		FROM signaling_events
		WHERE affected IS NOT NULL
		ORDER BY a`)
}

func (s *Store) distinct(ctx context.Context, query string) ([]string, error) {
	var values []string
	err := s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return err
			}
			values = append(values, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct values: %w", err)
	}
	return values, nil
}
