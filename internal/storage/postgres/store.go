package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultIndexer/internal/entity"
	"vaultIndexer/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	kind          TEXT NOT NULL,
	id            BYTEA NOT NULL,
	attributes    JSONB NOT NULL,
	block_number  BIGINT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, id)
);

CREATE TABLE IF NOT EXISTS indexer_state (
	name                  TEXT PRIMARY KEY,
	last_processed_block  BIGINT NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const upsertEntity = `
	INSERT INTO entities (kind, id, attributes, block_number, created_at, updated_at)
	VALUES ($1, $2, $3, $4, now(), now())
	ON CONFLICT (kind, id)
	DO UPDATE SET
		attributes = EXCLUDED.attributes,
		block_number = EXCLUDED.block_number,
		updated_at = now()
`

// Store provides Postgres persistence for entities.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the entity and state tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Save upserts one entity.
func (s *Store) Save(ctx context.Context, kind entity.Kind, id entity.ID, attrs entity.Attributes) error {
	payload, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	if _, err := s.pool.Exec(ctx, upsertEntity, string(kind), []byte(id), payload, blockNumber(attrs)); err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	return nil
}

// SaveBatch upserts entries in one round trip. Later entries for the same id win.
func (s *Store) SaveBatch(ctx context.Context, entries []storage.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		payload, err := json.Marshal(e.Attributes)
		if err != nil {
			return fmt.Errorf("marshal attributes: %w", err)
		}
		batch.Queue(upsertEntity, string(e.Kind), []byte(e.ID), payload, blockNumber(e.Attributes))
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, e := range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert entity %s %s: %w", e.Kind, e.ID, err)
		}
	}
	return nil
}

// Load returns the stored attributes for (kind, id).
func (s *Store) Load(ctx context.Context, kind entity.Kind, id entity.ID) (entity.Attributes, bool, error) {
	var payload []byte
	row := s.pool.QueryRow(ctx, `SELECT attributes FROM entities WHERE kind=$1 AND id=$2`, string(kind), []byte(id))
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load entity: %w", err)
	}
	var attrs entity.Attributes
	if err := json.Unmarshal(payload, &attrs); err != nil {
		return nil, false, fmt.Errorf("parse attributes: %w", err)
	}
	return attrs, true, nil
}

// Count returns the number of entities of kind.
func (s *Store) Count(ctx context.Context, kind entity.Kind) (int, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM entities WHERE kind=$1`, string(kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	return int(n), nil
}

// LoadCheckpoint returns last_processed_block for a name.
func (s *Store) LoadCheckpoint(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("load checkpoint: %w", err)
	}
	return uint64(block), true, nil
}

// SaveCheckpoint upserts last_processed_block for a name.
func (s *Store) SaveCheckpoint(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func blockNumber(attrs entity.Attributes) *int64 {
	raw, ok := attrs["blockNumber"]
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
