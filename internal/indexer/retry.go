package indexer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// retryPolicy retries a block commit with exponential backoff.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

func newRetryPolicy(maxRetries int, baseDelay time.Duration, logger *zap.Logger) retryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return retryPolicy{maxRetries: maxRetries, baseDelay: baseDelay, logger: logger}
}

// do runs fn until it succeeds, the attempts run out or ctx is done.
// Each failed attempt is logged with the block it belongs to.
func (p retryPolicy) do(ctx context.Context, block uint64, fn func(context.Context) error) error {
	delay := p.baseDelay
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				p.logger.Info("block commit recovered",
					zap.Uint64("block_number", block),
					zap.Int("attempts", attempt),
				)
			}
			return nil
		}
		if attempt > p.maxRetries {
			p.logger.Error("block commit gave up",
				zap.Uint64("block_number", block),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return err
		}

		p.logger.Warn("block commit failed, retrying",
			zap.Uint64("block_number", block),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
