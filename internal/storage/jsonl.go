package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vaultIndexer/internal/entity"
)

// JsonlStore appends every save as a JSON line. The latest line for an id wins.
type JsonlStore struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStore(path string) *JsonlStore {
	return &JsonlStore{path: path}
}

// Save appends one record.
func (s *JsonlStore) Save(_ context.Context, kind entity.Kind, id entity.ID, attrs entity.Attributes) error {
	return s.appendRecords([]Record{{
		Kind:       kind,
		ID:         id.Hex(),
		Attributes: attrs,
		SavedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}})
}

// SaveBatch appends all entries with a single file open.
func (s *JsonlStore) SaveBatch(_ context.Context, entries []Entry) error {
	savedAt := time.Now().UTC().Format(time.RFC3339Nano)
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, Record{
			Kind:       e.Kind,
			ID:         e.ID.Hex(),
			Attributes: e.Attributes,
			SavedAt:    savedAt,
		})
	}
	return s.appendRecords(records)
}

func (s *JsonlStore) appendRecords(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal entity record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write entity record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// Load returns the attributes of the last record saved for id.
func (s *JsonlStore) Load(_ context.Context, kind entity.Kind, id entity.ID) (entity.Attributes, bool, error) {
	key := id.Hex()
	var found entity.Attributes
	err := s.scan(func(record Record) {
		if record.Kind == kind && record.ID == key {
			found = record.Attributes
		}
	})
	if err != nil {
		return nil, false, err
	}
	return found, found != nil, nil
}

// Count returns the number of distinct ids saved for kind.
func (s *JsonlStore) Count(_ context.Context, kind entity.Kind) (int, error) {
	ids := make(map[string]struct{})
	err := s.scan(func(record Record) {
		if record.Kind == kind {
			ids[record.ID] = struct{}{}
		}
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *JsonlStore) scan(fn func(Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open entity file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("parse entity record: %w", err)
		}
		fn(record)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan entity file: %w", err)
	}
	return nil
}
