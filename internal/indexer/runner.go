package indexer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"vaultIndexer/internal/entity"
	"vaultIndexer/internal/manifest"
	"vaultIndexer/internal/mapping"
	"vaultIndexer/internal/metrics"
	"vaultIndexer/internal/model"
	"vaultIndexer/internal/storage"
	"vaultIndexer/internal/vaultfactory"
)

// RunConfig holds runtime settings for the projection runner.
type RunConfig struct {
	InputPath    string
	Bindings     []manifest.Binding
	MaxRetries   int
	RetryBackoff time.Duration
}

// RecordWriter receives one JSON-serializable record per call.
type RecordWriter interface {
	Write(value interface{}) error
}

// Stats summarizes one run.
type Stats struct {
	Logs     int
	Decoded  int
	Skipped  int
	Failed   int
	Blocks   int
	Entities int
}

// Runner reads raw logs in block order, projects them into entities and
// commits one block at a time.
type Runner struct {
	cfg        RunConfig
	decoder    *vaultfactory.Decoder
	store      mapping.Store
	checkpoint CheckpointStore
	errors     RecordWriter
	metrics    *metrics.Metrics
	logger     *zap.Logger
	seen       map[string]struct{}
}

// Option customizes a Runner.
type Option func(*Runner)

func WithCheckpoint(cp CheckpointStore) Option {
	return func(r *Runner) { r.checkpoint = cp }
}

func WithErrorWriter(w RecordWriter) Option {
	return func(r *Runner) { r.errors = w }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, store mapping.Store, opts ...Option) (*Runner, error) {
	decoder, err := vaultfactory.NewDecoder()
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:        cfg,
		decoder:    decoder,
		store:      store,
		checkpoint: NewFileCheckpointStore("", false),
		logger:     zap.NewNop(),
		seen:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run processes the configured input file.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	if r.cfg.InputPath == "" {
		return Stats{}, fmt.Errorf("input path is required")
	}
	file, err := os.Open(r.cfg.InputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return r.Process(ctx, file)
}

// pendingEvent is a decoded event waiting for its block to close. handler
// names the manifest handler the event was enabled for.
type pendingEvent struct {
	event   mapping.Event
	handler string
}

// Process reads raw log lines from in until EOF.
func (r *Runner) Process(ctx context.Context, in io.Reader) (Stats, error) {
	var stats Stats
	if r.store == nil {
		return stats, fmt.Errorf("store is nil")
	}
	if len(r.cfg.Bindings) == 0 {
		return stats, fmt.Errorf("at least one data source binding is required")
	}

	cp, resume, err := r.checkpoint.Load(ctx)
	if err != nil {
		return stats, err
	}
	if resume {
		r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessedBlock))
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var (
		currentBlock uint64
		pending      []pendingEvent
	)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		saved, err := r.commitBlock(ctx, currentBlock, pending)
		if err != nil {
			return err
		}
		stats.Blocks++
		stats.Entities += saved
		pending = pending[:0]
		return nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Logs++
		r.metrics.LogsProcessed()

		record, err := model.ParseLogLine(line, time.Now())
		if err != nil {
			stats.Failed++
			r.reportFailure(model.DecodeError{Stage: "parse", Error: err.Error()})
			continue
		}

		if resume && record.BlockNumber <= cp.LastProcessedBlock {
			stats.Skipped++
			continue
		}

		binding, ok := r.bindingFor(record)
		if !ok {
			stats.Skipped++
			continue
		}
		kind, ok := r.decoder.Kind(record.Topic0())
		if !ok || !binding.Enabled(kind) {
			stats.Skipped++
			continue
		}
		if r.isDuplicate(record) {
			stats.Skipped++
			continue
		}

		event, err := r.decoder.Decode(record)
		if err != nil {
			stats.Failed++
			r.reportFailure(model.NewDecodeError(record, "decode", err))
			continue
		}
		stats.Decoded++

		if len(pending) > 0 && record.BlockNumber != currentBlock {
			if record.BlockNumber < currentBlock {
				return stats, fmt.Errorf("log at block %d follows block %d: input is not block ordered", record.BlockNumber, currentBlock)
			}
			if err := flush(); err != nil {
				return stats, err
			}
		}
		currentBlock = record.BlockNumber
		pending = append(pending, pendingEvent{event: event, handler: binding.Handlers[kind].Name})
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	if err := flush(); err != nil {
		return stats, err
	}

	r.logger.Info("projection complete",
		zap.Int("logs", stats.Logs),
		zap.Int("decoded", stats.Decoded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("blocks", stats.Blocks),
		zap.Int("entities", stats.Entities),
	)
	return stats, nil
}

// commitBlock runs every handler for one block into a buffer, writes the
// buffer to the store and advances the checkpoint. The whole block is retried.
func (r *Runner) commitBlock(ctx context.Context, block uint64, events []pendingEvent) (int, error) {
	var entries []storage.Entry
	policy := newRetryPolicy(r.cfg.MaxRetries, r.cfg.RetryBackoff, r.logger)
	err := policy.do(ctx, block, func(ctx context.Context) error {
		buffer := &blockBuffer{}
		for _, pe := range events {
			if err := mapping.Dispatch(ctx, buffer, pe.event); err != nil {
				return fmt.Errorf("%s: %w", pe.handler, err)
			}
		}
		if err := r.persist(ctx, buffer.entries); err != nil {
			r.metrics.Errors()
			return err
		}
		entries = buffer.entries
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("commit block %d: %w", block, err)
	}

	if err := r.checkpoint.Save(ctx, block); err != nil {
		r.metrics.Errors()
		return 0, err
	}

	for _, e := range entries {
		r.metrics.EntitySaved(e.Kind)
	}
	r.metrics.BlocksProcessed()
	r.logger.Debug("block committed", zap.Uint64("block_number", block), zap.Int("entities", len(entries)))
	return len(entries), nil
}

func (r *Runner) persist(ctx context.Context, entries []storage.Entry) error {
	if batch, ok := r.store.(storage.BatchStore); ok {
		return batch.SaveBatch(ctx, entries)
	}
	for _, e := range entries {
		if err := r.store.Save(ctx, e.Kind, e.ID, e.Attributes); err != nil {
			return fmt.Errorf("save %s %s: %w", e.Kind, e.ID, err)
		}
	}
	return nil
}

func (r *Runner) bindingFor(record model.LogRecord) (manifest.Binding, bool) {
	if !common.IsHexAddress(record.Address) {
		return manifest.Binding{}, false
	}
	addr := common.HexToAddress(record.Address)
	for _, b := range r.cfg.Bindings {
		if b.Address == addr && record.BlockNumber >= b.StartBlock {
			return b, true
		}
	}
	return manifest.Binding{}, false
}

func (r *Runner) reportFailure(decodeErr model.DecodeError) {
	r.metrics.DecodeFailures()
	r.logger.Warn("log decode failed",
		zap.String("stage", decodeErr.Stage),
		zap.Uint64("block_number", decodeErr.BlockNumber),
		zap.String("tx_hash", decodeErr.TxHash),
		zap.Uint64("log_index", decodeErr.LogIndex),
		zap.String("error", decodeErr.Error),
	)
	if r.errors != nil {
		if err := r.errors.Write(decodeErr); err != nil {
			r.logger.Warn("write decode error failed", zap.Error(err))
		}
	}
}

func (r *Runner) isDuplicate(record model.LogRecord) bool {
	id := fmt.Sprintf("%d:%s:%d", record.BlockNumber, record.TxHash, record.LogIndex)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}

// blockBuffer collects a block's saves in handler order.
type blockBuffer struct {
	entries []storage.Entry
}

func (b *blockBuffer) Save(_ context.Context, kind entity.Kind, id entity.ID, attrs entity.Attributes) error {
	b.entries = append(b.entries, storage.Entry{Kind: kind, ID: id, Attributes: attrs})
	return nil
}
