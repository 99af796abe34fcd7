// File: internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
)

// Artifact kinds as stored in the artifacts table.
const (
	kindNarrative = "narrative"
	kindPayload   = "payload"
)

// DBPool abstracts the pgxpool.Pool so the store can be mocked in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const sqlEnsureArtifacts = `
    CREATE TABLE IF NOT EXISTS artifacts (
        task_id    TEXT NOT NULL,
        kind       TEXT NOT NULL,
        document   BYTEA NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (task_id, kind)
    );
`

const sqlUpsertArtifact = `
    INSERT INTO artifacts (task_id, kind, document, updated_at)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (task_id, kind) DO UPDATE SET
        document = EXCLUDED.document,
        updated_at = EXCLUDED.updated_at;
`

const sqlSelectArtifact = `
    SELECT document FROM artifacts WHERE task_id = $1 AND kind = $2;
`

// PostgresStore persists report artifacts in a single artifacts table,
// keyed by task id and artifact kind.
type PostgresStore struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgresStore verifies the connection and ensures the artifacts table
// exists before returning the store.
func NewPostgresStore(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, sqlEnsureArtifacts); err != nil {
		return nil, fmt.Errorf("failed to ensure artifacts table: %w", err)
	}
	return &PostgresStore{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// SaveNarrative implements schemas.ArtifactStore.
func (s *PostgresStore) SaveNarrative(ctx context.Context, taskID string, doc []byte) error {
	return s.upsert(ctx, taskID, kindNarrative, doc)
}

// Narrative implements schemas.ArtifactStore.
func (s *PostgresStore) Narrative(ctx context.Context, taskID string) ([]byte, error) {
	return s.fetch(ctx, taskID, kindNarrative)
}

// SavePayload implements schemas.ArtifactStore.
func (s *PostgresStore) SavePayload(ctx context.Context, taskID string, doc []byte) error {
	return s.upsert(ctx, taskID, kindPayload, doc)
}

// Payload implements schemas.ArtifactStore.
func (s *PostgresStore) Payload(ctx context.Context, taskID string) ([]byte, error) {
	return s.fetch(ctx, taskID, kindPayload)
}

func (s *PostgresStore) upsert(ctx context.Context, taskID, kind string, doc []byte) error {
	if taskID == "" {
		return fmt.Errorf("task id must not be empty")
	}

	if _, err := s.pool.Exec(ctx, sqlUpsertArtifact, taskID, kind, doc, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert %s artifact for task %s: %w", kind, taskID, err)
	}
	s.log.Debug("Artifact persisted",
		zap.String("task_id", taskID),
		zap.String("kind", kind),
		zap.Int("bytes", len(doc)))
	return nil
}

func (s *PostgresStore) fetch(ctx context.Context, taskID, kind string) ([]byte, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task id must not be empty")
	}

	var doc []byte
	err := s.pool.QueryRow(ctx, sqlSelectArtifact, taskID, kind).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s artifact for task %s: %w", kind, taskID, schemas.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query %s artifact for task %s: %w", kind, taskID, err)
	}
	return doc, nil
}
