package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mailom-erp/mailom-erp/internal/inventory"
	jobmetrics "github.com/mailom-erp/mailom-erp/internal/jobs"
)

const defaultDeadStockDays = 365

// DeadStockScanJob writes off available products that have sat in stock
// past the configured age. Trees that never sell eventually die; marking
// them keeps the profit figures honest.
type DeadStockScanJob struct {
	Inventory *inventory.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewDeadStockScanJob wires dependencies for the scan handler.
func NewDeadStockScanJob(svc *inventory.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *DeadStockScanJob {
	return &DeadStockScanJob{Inventory: svc, Logger: logger, Metrics: metrics}
}

// Handle processes TaskDeadStockScan tasks.
func (j *DeadStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Inventory == nil {
		return errors.New("dead stock scan: handler not configured")
	}
	var payload DeadStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OlderThanDays <= 0 {
		payload.OlderThanDays = defaultDeadStockDays
	}

	tracker := j.metrics().Track(TaskDeadStockScan)
	var resultErr error
	defer func() { resultErr = tracker.End(resultErr) }()

	olderThan := time.Duration(payload.OlderThanDays) * 24 * time.Hour
	written, err := j.Inventory.WriteOffStale(ctx, olderThan)
	if err != nil {
		resultErr = err
		j.logger().Error("dead stock scan failed", slog.Any("error", err))
		return resultErr
	}

	j.metrics().AddDeadStock(written)
	j.logger().Info("dead stock scan finished",
		slog.Int("written_off", written),
		slog.Int("older_than_days", payload.OlderThanDays))
	return nil
}

func (j *DeadStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDeadStockScan))
	}
	return slog.Default().With(slog.String("job", TaskDeadStockScan))
}

func (j *DeadStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
