package orb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/metrics"
	"github.com/lunaricorn/lunaricorn/pkg/signaling"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// EventPublisher announces object mutations on the signaling bus. The
// signaling client satisfies this.
type EventPublisher interface {
	Push(eventType types.EventType, message map[string]any, opts ...signaling.PushOption) (int64, error)
}

// Storage persists orb data and meta records. Every successful mutation is
// announced on the bus as FileOp_new or FileOp_update. An announce failure
// does not undo the committed write, but it is returned to the caller.
type Storage struct {
	db     *database.Adapter
	events EventPublisher
	logger zerolog.Logger
}

// NewStorage creates the object store. events may be nil, which disables
// mutation announcements.
func NewStorage(db *database.Adapter, events EventPublisher) *Storage {
	return &Storage{
		db:     db,
		events: events,
		logger: log.WithComponent("orb-storage"),
	}
}

// Install creates the orb_data and orb_meta tables. Idempotent.
func (s *Storage) Install(ctx context.Context) error {
	return s.db.Install(ctx, "orb", func(tx *sqlx.Tx) error {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS orb_data
			(
				u uuid NOT NULL,
				data_type character varying(256) DEFAULT '@json',
				chain_left uuid,
				chain_right uuid,
				parent uuid,
				ctime timestamp without time zone NOT NULL DEFAULT now(),
				flags jsonb,
				src text,
				data jsonb,
				PRIMARY KEY (u)
			)`,
			`CREATE TABLE IF NOT EXISTS orb_meta
			(
				id bigserial NOT NULL,
				u uuid NOT NULL,
				data_type character varying(64) DEFAULT '@json',
				ctime timestamp without time zone NOT NULL DEFAULT now(),
				flags jsonb,
				src bigint,
				PRIMARY KEY (id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_orb_meta_u ON orb_meta(u)`,
			`CREATE INDEX IF NOT EXISTS idx_orb_meta_data_type ON orb_meta(data_type)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// chainRef maps a zero chain handle to a NULL column value.
func chainRef(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}

// PushData stores one data record. A zero uuid means create: the store
// assigns a fresh UUIDv7 and the creation time. A set uuid means update the
// existing record in place. The returned flag reports whether a new record
// was created.
func (s *Storage) PushData(ctx context.Context, d *types.OrbData) (bool, error) {
	if d.Subtype == "" {
		d.Subtype = types.OrbSubtypeJSON
	}

	data, err := json.Marshal(d.Data)
	if err != nil {
		metrics.OrbOps.WithLabelValues("push_data", "error").Inc()
		return false, fmt.Errorf("failed to encode data: %w", err)
	}
	flags, err := json.Marshal(d.Flags)
	if err != nil {
		metrics.OrbOps.WithLabelValues("push_data", "error").Inc()
		return false, fmt.Errorf("failed to encode flags: %w", err)
	}

	created := d.U == uuid.Nil
	if created {
		u, err := uuid.NewV7()
		if err != nil {
			metrics.OrbOps.WithLabelValues("push_data", "error").Inc()
			return false, fmt.Errorf("failed to generate uuid: %w", err)
		}
		d.U = u
		d.CTime = time.Now()
	}

	err = s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		if created {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO orb_data (u, data_type, chain_left, chain_right, parent, ctime, flags, src, data)
				VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9::jsonb)`,
				d.U, string(d.Subtype), chainRef(d.ChainLeft), chainRef(d.ChainRight),
				chainRef(d.Parent), d.CTime, string(flags), d.Src, string(data))
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE orb_data SET
				data_type = $2,
				chain_left = $3,
				chain_right = $4,
				parent = $5,
				flags = $6::jsonb,
				src = $7,
				data = $8::jsonb
			WHERE u = $1`,
			d.U, string(d.Subtype), chainRef(d.ChainLeft), chainRef(d.ChainRight),
			chainRef(d.Parent), string(flags), d.Src, string(data))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return database.ErrNotFound
		}
		return nil
	})
	if err != nil {
		metrics.OrbOps.WithLabelValues("push_data", "error").Inc()
		return false, fmt.Errorf("failed to store data record: %w", err)
	}

	metrics.OrbOps.WithLabelValues("push_data", "success").Inc()
	if err := s.announce(created, map[string]any{"id": nil, "uuid": d.U.String()}, d.U.String()); err != nil {
		return created, fmt.Errorf("data record %s stored but not announced: %w", d.U, err)
	}
	return created, nil
}

// FetchData returns the data record stored under u.
func (s *Storage) FetchData(ctx context.Context, u uuid.UUID) (*types.OrbData, error) {
	var (
		d                  types.OrbData
		flags              []byte
		data               []byte
		src                sql.NullString
		left, right, paren uuid.NullUUID
	)
	err := s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, `
			SELECT u, data_type, chain_left, chain_right, parent, ctime, flags, src, data
			FROM orb_data WHERE u = $1`, u).
			Scan(&d.U, &d.Subtype, &left, &right, &paren,
				&d.CTime, &flags, &src, &data)
	})
	if errors.Is(err, sql.ErrNoRows) {
		metrics.OrbOps.WithLabelValues("fetch_data", "not_found").Inc()
		return nil, database.ErrNotFound
	}
	if err != nil {
		metrics.OrbOps.WithLabelValues("fetch_data", "error").Inc()
		return nil, fmt.Errorf("failed to fetch data record: %w", err)
	}

	d.Src = src.String
	d.ChainLeft = left.UUID
	d.ChainRight = right.UUID
	d.Parent = paren.UUID
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &d.Flags); err != nil {
			return nil, fmt.Errorf("corrupt flags for %s: %w", u, err)
		}
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d.Data); err != nil {
			return nil, fmt.Errorf("corrupt data for %s: %w", u, err)
		}
	}
	metrics.OrbOps.WithLabelValues("fetch_data", "success").Inc()
	return &d, nil
}

// PushMeta stores one meta record. A non-positive id means create; the store
// assigns the id and creation time. The returned flag reports whether a new
// record was created.
func (s *Storage) PushMeta(ctx context.Context, m *types.OrbMeta) (bool, error) {
	if m.DataType == "" {
		m.DataType = types.OrbSubtypeJSON
	}
	flags, err := json.Marshal(m.Flags)
	if err != nil {
		metrics.OrbOps.WithLabelValues("push_meta", "error").Inc()
		return false, fmt.Errorf("failed to encode flags: %w", err)
	}

	created := m.ID <= 0
	err = s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		if created {
			m.CTime = time.Now()
			return tx.QueryRowxContext(ctx, `
				INSERT INTO orb_meta (u, data_type, ctime, flags, src)
				VALUES ($1, $2, $3, $4::jsonb, $5)
				RETURNING id`,
				m.U, string(m.DataType), m.CTime, string(flags), m.Handle).Scan(&m.ID)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE orb_meta SET u = $2, data_type = $3, flags = $4::jsonb, src = $5
			WHERE id = $1`,
			m.ID, m.U, string(m.DataType), string(flags), m.Handle)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return database.ErrNotFound
		}
		return nil
	})
	if err != nil {
		metrics.OrbOps.WithLabelValues("push_meta", "error").Inc()
		return false, fmt.Errorf("failed to store meta record: %w", err)
	}

	metrics.OrbOps.WithLabelValues("push_meta", "success").Inc()
	if err := s.announce(created, map[string]any{"id": m.ID, "uuid": m.U.String()}, m.U.String()); err != nil {
		return created, fmt.Errorf("meta record %d stored but not announced: %w", m.ID, err)
	}
	return created, nil
}

// FetchMeta returns the meta record stored under id.
func (s *Storage) FetchMeta(ctx context.Context, id int64) (*types.OrbMeta, error) {
	var (
		m      types.OrbMeta
		flags  []byte
		handle sql.NullInt64
	)
	err := s.db.Execute(ctx, func(tx *sqlx.Tx) error {
		return tx.QueryRowxContext(ctx, `
			SELECT id, u, data_type, ctime, flags, src
			FROM orb_meta WHERE id = $1`, id).
			Scan(&m.ID, &m.U, &m.DataType, &m.CTime, &flags, &handle)
	})
	if errors.Is(err, sql.ErrNoRows) {
		metrics.OrbOps.WithLabelValues("fetch_meta", "not_found").Inc()
		return nil, database.ErrNotFound
	}
	if err != nil {
		metrics.OrbOps.WithLabelValues("fetch_meta", "error").Inc()
		return nil, fmt.Errorf("failed to fetch meta record: %w", err)
	}

	m.Handle = handle.Int64
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &m.Flags); err != nil {
			return nil, fmt.Errorf("corrupt flags for meta %d: %w", id, err)
		}
	}
	metrics.OrbOps.WithLabelValues("fetch_meta", "success").Inc()
	return &m, nil
}

// announce publishes a FileOp event for a completed mutation. The write has
// already committed and stays committed; a failure here is reported to the
// caller so a lost FileOp event never passes silently.
func (s *Storage) announce(created bool, payload map[string]any, affected string) error {
	if s.events == nil {
		return nil
	}
	eventType := types.EventFileOpUpdate
	if created {
		eventType = types.EventFileOpNew
	}
	_, err := s.events.Push(eventType, payload,
		signaling.WithSource("orb"),
		signaling.WithTags("orb"),
		signaling.WithAffected(affected))
	if err != nil {
		s.logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to announce mutation")
		return err
	}
	return nil
}
