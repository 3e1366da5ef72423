package payments

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const expiredResultDesc = "Payment expired: no callback received"

// Sweeper periodically fails pending payment records whose callback never
// arrived, so a lost provider notification cannot leave a record pending
// forever.
type Sweeper struct {
	records Repository
	expiry  time.Duration
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewSweeper schedules a sweep every interval, failing pending records older
// than expiry.
func NewSweeper(records Repository, interval, expiry time.Duration, logger *slog.Logger) *Sweeper {
	s := &Sweeper{
		records: records,
		expiry:  expiry,
		logger:  logger,
		cron:    cron.New(),
	}
	s.cron.Schedule(cron.Every(interval), cron.FuncJob(s.sweep))
	return s
}

// Start begins the sweep schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule; the returned context is done once any in-flight
// sweep finishes.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.expiry)
	n, err := s.records.ExpirePending(ctx, cutoff, expiredResultDesc)
	if err != nil {
		s.logger.Error("payment sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired stale pending payments", "count", n)
	}
}
