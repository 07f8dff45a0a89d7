package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/castpass/castpass/internal/application/payment/dto"
	"github.com/castpass/castpass/internal/shared/goroutine"
	"github.com/castpass/castpass/internal/shared/logger"
)

type compactor interface {
	Compact(ctx context.Context, retention time.Duration) (*dto.CompactionResult, error)
}

// CompactionScheduler periodically deletes entitlements that expired more
// than retention ago. The consumed-transaction index is never touched.
type CompactionScheduler struct {
	compactor compactor
	interval  time.Duration
	retention time.Duration
	logger    logger.Interface
	stopChan  chan struct{}
	stopOnce  sync.Once      // Ensures Stop() is only called once
	wg        sync.WaitGroup // Tracks running goroutines for graceful shutdown
}

func NewCompactionScheduler(compactor compactor, interval, retention time.Duration, logger logger.Interface) *CompactionScheduler {
	return &CompactionScheduler{
		compactor: compactor,
		interval:  interval,
		retention: retention,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start runs one compaction immediately and then every interval until Stop
// is called or ctx is cancelled. It does not block.
func (s *CompactionScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting compaction scheduler", "interval", s.interval, "retention", s.retention)

	s.wg.Add(1)
	goroutine.SafeGo(s.logger, "compaction-scheduler", func() {
		defer s.wg.Done()
		s.run(ctx)
	})
}

// Stop stops the scheduler gracefully and waits for the running pass to finish.
// Safe to call multiple times.
func (s *CompactionScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("compaction scheduler stopped")
	})
}

func (s *CompactionScheduler) run(ctx context.Context) {
	s.compact(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.compact(ctx)
		}
	}
}

func (s *CompactionScheduler) compact(ctx context.Context) {
	startTime := time.Now()

	result, err := s.compactor.Compact(ctx, s.retention)
	if err != nil {
		s.logger.Errorw("failed to compact entitlements",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Removed > 0 {
		s.logger.Infow("expired entitlements compacted",
			"count", result.Removed,
			"cutoff", result.Cutoff,
			"duration", time.Since(startTime),
		)
	}
}
