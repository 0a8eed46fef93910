package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/okian/pubinfo/pkg/metrics"
)

const (
	storePostgres       = "postgres"
	defaultTable        = "pubinfo_documents"
	defaultPingAttempts = 10
	defaultPingInterval = 2 * time.Second
	manifestKey         = "current"
)

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresStore mirrors every document into one PostgreSQL table keyed by
// (kind, key). Bodies are stored as json, not jsonb, to keep key order.
// Rows not rewritten by the current run are pruned when the manifest is
// written.
type PostgresStore struct {
	db           *sql.DB
	runID        string
	table        string
	pingAttempts int
	pingInterval time.Duration
}

// NewPostgresStore opens a connection, waits for the server, runs the schema
// migration and returns a ready-to-use store tagged with runID.
func NewPostgresStore(ctx context.Context, dsn, runID string, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{
		runID:        runID,
		table:        defaultTable,
		pingAttempts: defaultPingAttempts,
		pingInterval: defaultPingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !tableName.MatchString(s.table) {
		return nil, fmt.Errorf("postgres: %w: table %q", ErrInvalidKey, s.table)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	s.db = db

	if err := s.ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ping(ctx context.Context) error {
	var err error
	for i := 0; i < s.pingAttempts; i++ {
		if err = s.db.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pingInterval):
		}
	}
	return fmt.Errorf("postgres: ping failed after %d attempts: %w", s.pingAttempts, err)
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			kind       VARCHAR(32) NOT NULL,
			key        TEXT        NOT NULL,
			body       JSON        NOT NULL,
			run_id     UUID        NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (kind, key)
		);

		CREATE INDEX IF NOT EXISTS idx_%[1]s_run_id ON %[1]s(run_id);
	`, s.table))
	return err
}

func (s *PostgresStore) PutLegislators(ctx context.Context, roster *model.Roster) error {
	return s.upsert(ctx, KindLegislators, KindLegislators, roster)
}

func (s *PostgresStore) PutBills(ctx context.Context, bills *model.Bills) error {
	return s.upsert(ctx, KindBills, KindBills, bills)
}

func (s *PostgresStore) PutVotes(ctx context.Context, author string, history *model.History) error {
	if author == "" {
		return fmt.Errorf("%w: empty author", ErrInvalidKey)
	}
	return s.upsert(ctx, KindVotes, author, history)
}

// PutManifest records the manifest and drops documents left by earlier runs.
func (s *PostgresStore) PutManifest(ctx context.Context, manifest model.Manifest) error {
	if err := s.upsert(ctx, KindManifest, manifestKey, manifest); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE run_id <> $1`, s.table), s.runID); err != nil {
		return fmt.Errorf("%w: postgres: prune: %w", ErrWrite, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) upsert(ctx context.Context, kind, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		metrics.RecordWriteError(storePostgres, kind)
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, kind, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (kind, key, body, run_id, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (kind, key) DO UPDATE
		SET body = EXCLUDED.body, run_id = EXCLUDED.run_id, updated_at = EXCLUDED.updated_at
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query, kind, key, string(body), s.runID); err != nil {
		metrics.RecordWriteError(storePostgres, kind)
		return fmt.Errorf("%w: postgres: %s %q: %w", ErrWrite, kind, key, err)
	}
	metrics.RecordDocumentWritten(storePostgres, kind)
	return nil
}
