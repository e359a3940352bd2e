package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerStatsWarmup pre-computes cached balances and statistics.
	TaskLedgerStatsWarmup = "ledger:stats_warmup"
)

// StatsWarmupPayload describes a warmup request.
type StatsWarmupPayload struct {
	Reason string `json:"reason"`
}

// NewStatsWarmupTask constructs an Asynq task.
func NewStatsWarmupTask(payload StatsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerStatsWarmup, data), nil
}
