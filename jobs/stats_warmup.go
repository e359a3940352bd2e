package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/meridian-erp/meridian-erp/internal/jobs"
	"github.com/meridian-erp/meridian-erp/internal/ledger"
	"github.com/meridian-erp/meridian-erp/internal/registry/heads"
)

// StatsWarmupJob pre-populates the cached statistics and per-head balances
// so the first dashboard read after an invalidation stays cheap. The engine
// itself never depends on this job; it only refills a cache.
type StatsWarmupJob struct {
	Ledger  *ledger.Service
	Heads   *heads.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewStatsWarmupJob wires dependencies for the warmup handler.
func NewStatsWarmupJob(ledgerSvc *ledger.Service, headSvc *heads.Service, logger *slog.Logger) *StatsWarmupJob {
	return &StatsWarmupJob{
		Ledger: ledgerSvc,
		Heads:  headSvc,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes stats warmup tasks.
func (j *StatsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Ledger == nil || j.Heads == nil {
		return errors.New("stats warmup: handler not configured")
	}
	var payload StatsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.String("reason", payload.Reason))
	started := j.now()
	tracker := j.Metrics.Track(TaskLedgerStatsWarmup)
	logger.Info("starting ledger stats warmup")

	if _, err := j.Ledger.Stats(ctx, ledger.Filter{}); err != nil {
		logger.Error("warm aggregate stats", slog.Any("error", err))
		return tracker.End(err)
	}

	allHeads, err := j.Heads.List(ctx, nil)
	if err != nil {
		logger.Error("list heads", slog.Any("error", err))
		return tracker.End(err)
	}
	warmed := 0
	for _, head := range allHeads {
		if _, err := j.Ledger.HeadBalance(ctx, head.ID); err != nil {
			logger.Error("warm head balance", slog.String("head_id", head.ID.String()), slog.Any("error", err))
			return tracker.End(err)
		}
		warmed++
	}

	logger.Info("ledger stats warmup finished",
		slog.Int("heads_warmed", warmed),
		slog.Duration("elapsed", j.now().Sub(started)))
	return tracker.End(nil)
}

func (j *StatsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *StatsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
