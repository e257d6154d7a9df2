package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/internal/domain/quota"
	"github.com/goalfeed/videprinter/pkg/logger"
)

const quotaMetaKey = "request_quota"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS goal_events (
		id            TEXT PRIMARY KEY,
		fixture_id    TEXT NOT NULL,
		competition   TEXT NOT NULL DEFAULT '',
		utc_timestamp TIMESTAMPTZ NOT NULL,
		payload       JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_goal_events_timestamp
		ON goal_events (utc_timestamp DESC)`,
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value JSONB NOT NULL
	)`,
}

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewPostgresStore opens the database, verifies connectivity and runs the
// schema migrations.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenDatabase, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpenDatabase, err)
	}

	s := &PostgresStore{db: db, log: logger.Get().Named("repository")}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", ErrMigrate, err)
		}
	}
	return nil
}

// SaveEvents inserts events, skipping ids that already exist.
func (s *PostgresStore) SaveEvents(ctx context.Context, events []model.GoalEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO goal_events (id, fixture_id, competition, utc_timestamp, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer func() { _ = stmt.Close() }()

	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrQuery, err)
		}
		if _, err := stmt.ExecContext(ctx, ev.ID, ev.FixtureID, ev.Competition, ev.UTCTimestamp, payload); err != nil {
			return fmt.Errorf("%w: %v", ErrQuery, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return nil
}

// RecentEvents returns up to limit stored events, newest first.
func (s *PostgresStore) RecentEvents(ctx context.Context, limit int) ([]model.GoalEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM goal_events
		ORDER BY utc_timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.GoalEvent
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		var ev model.GoalEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			s.log.Warn(ctx, "skipping unreadable stored event", logger.Error(err))
			continue
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return out, nil
}

// ExistingIDs reports which of the given ids are already stored.
func (s *PostgresStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM goal_events WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return out, nil
}

// LoadQuota returns the stored request counter and whether one existed.
func (s *PostgresStore) LoadQuota(ctx context.Context) (quota.State, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM meta WHERE key = $1`, quotaMetaKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return quota.State{}, false, nil
	}
	if err != nil {
		return quota.State{}, false, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	var state quota.State
	if err := json.Unmarshal(value, &state); err != nil {
		return quota.State{}, false, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return state, true, nil
}

// SaveQuota upserts the request counter.
func (s *PostgresStore) SaveQuota(ctx context.Context, state quota.State) error {
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, quotaMetaKey, value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
