package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"nightlog/internal/repository"
)

// TrashSweeper periodically purges trashed dreams whose retention window has
// elapsed. It replaces a database-side TTL so expiry runs on our schedule and
// gets logged.
type TrashSweeper struct {
	dreams    repository.DreamRepository
	interval  time.Duration
	retention time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewTrashSweeper creates a sweeper that runs every interval and deletes
// dreams trashed longer ago than retention.
func NewTrashSweeper(dreams repository.DreamRepository, interval, retention time.Duration) *TrashSweeper {
	return &TrashSweeper{
		dreams:    dreams,
		interval:  interval,
		retention: retention,
	}
}

// Start launches the sweep loop. An immediate first sweep clears anything
// that expired while the server was down.
func (s *TrashSweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run(ctx)

	log.Printf("[Sweeper] Started: interval=%v retention=%v", s.interval, s.retention)
}

// Stop shuts the sweeper down and waits for an in-flight sweep to finish.
func (s *TrashSweeper) Stop() {
	log.Printf("[Sweeper] Stopping...")
	s.cancel()
	s.wg.Wait()
	log.Printf("[Sweeper] Stopped")
}

func (s *TrashSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *TrashSweeper) sweep(ctx context.Context) {
	startTime := time.Now()

	purged, err := s.dreams.DeleteExpiredTrashed(ctx, s.retention)
	if err != nil {
		log.Printf("[Sweeper] Sweep FAILED: err=%v", err)
		return
	}

	if purged > 0 {
		log.Printf("[Sweeper] Sweep OK: purged=%d duration=%v", purged, time.Since(startTime))
	}
}
