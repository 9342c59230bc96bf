package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"vaultIndexer/internal/entity"
)

// Store persists entities and checkpoints in a SQLite file.
type Store struct {
	db *sql.DB
}

// Open initializes a SQLite database and runs schema setup.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func configure(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	schema := `
CREATE TABLE IF NOT EXISTS entities (
  kind          TEXT NOT NULL,
  id            TEXT NOT NULL,
  attributes    TEXT NOT NULL,
  block_number  INTEGER,
  saved_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(kind, id)
);

CREATE TABLE IF NOT EXISTS cursors (
  name        TEXT PRIMARY KEY,
  block       INTEGER NOT NULL,
  updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Save upserts an entity.
func (s *Store) Save(ctx context.Context, kind entity.Kind, id entity.ID, attrs entity.Attributes) error {
	payload, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO entities (kind, id, attributes, block_number, saved_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(kind, id) DO UPDATE SET
  attributes=excluded.attributes,
  block_number=excluded.block_number,
  saved_at=CURRENT_TIMESTAMP;
`, string(kind), id.Hex(), string(payload), blockNumber(attrs))
	if err != nil {
		return fmt.Errorf("upsert entity: %w", err)
	}
	return nil
}

// Load returns the stored attributes for (kind, id).
func (s *Store) Load(ctx context.Context, kind entity.Kind, id entity.ID) (entity.Attributes, bool, error) {
	var payload string
	row := s.db.QueryRowContext(ctx, `
SELECT attributes FROM entities WHERE kind = ? AND id = ?;
`, string(kind), id.Hex())
	switch err := row.Scan(&payload); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("load entity: %w", err)
	}

	var attrs entity.Attributes
	if err := json.Unmarshal([]byte(payload), &attrs); err != nil {
		return nil, false, fmt.Errorf("parse attributes: %w", err)
	}
	return attrs, true, nil
}

// Count returns the number of entities of kind.
func (s *Store) Count(ctx context.Context, kind entity.Kind) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities WHERE kind = ?;`, string(kind)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entities: %w", err)
	}
	return n, nil
}

// SaveCheckpoint records the last fully processed block under name.
func (s *Store) SaveCheckpoint(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return errors.New("checkpoint name required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO cursors (name, block, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET
  block=excluded.block,
  updated_at=CURRENT_TIMESTAMP;
`, name, int64(block))
	if err != nil {
		return fmt.Errorf("upsert cursor: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the block saved under name.
func (s *Store) LoadCheckpoint(ctx context.Context, name string) (uint64, bool, error) {
	var block int64
	err := s.db.QueryRowContext(ctx, `SELECT block FROM cursors WHERE name = ?;`, name).Scan(&block)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("get cursor: %w", err)
	}
	return uint64(block), true, nil
}

func blockNumber(attrs entity.Attributes) any {
	raw, ok := attrs["blockNumber"]
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return n
}
