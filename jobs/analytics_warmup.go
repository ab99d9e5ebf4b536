package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mailom-erp/mailom-erp/internal/analytics"
	jobmetrics "github.com/mailom-erp/mailom-erp/internal/jobs"
)

// AnalyticsWarmupJob pre-populates the cost-analysis caches so the first
// dashboard hit after an invalidation does not pay the aggregate queries.
type AnalyticsWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(svc *analytics.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: svc,
		Logger:    logger,
		Metrics:   metrics,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes TaskAnalyticsWarmup tasks. It warms the all-time scope
// plus the trailing three months, which covers the default dashboard views.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	var resultErr error
	defer func() { resultErr = tracker.End(resultErr) }()

	now := j.now()
	scopes := []analytics.Filter{
		{},
		{StartDate: now.AddDate(0, -3, 0), EndDate: now},
	}

	logger := j.logger()
	logger.Info("starting analytics warmup")
	for _, scope := range scopes {
		if err := j.warmScope(ctx, scope); err != nil {
			resultErr = err
			logger.Error("warm scope", slog.Any("error", err))
			return resultErr
		}
	}
	logger.Info("completed analytics warmup", slog.Duration("duration", time.Since(now)))
	return resultErr
}

func (j *AnalyticsWarmupJob) warmScope(ctx context.Context, scope analytics.Filter) error {
	scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Analytics.GetSummary(scopeCtx, scope); err != nil {
		return err
	}
	if _, err := j.Analytics.CostByCategory(scopeCtx, scope); err != nil {
		return err
	}
	if _, err := j.Analytics.CostByGarden(scopeCtx, scope); err != nil {
		return err
	}
	if _, err := j.Analytics.CostByMonth(scopeCtx, scope); err != nil {
		return err
	}
	_, err := j.Analytics.ProfitAnalysis(scopeCtx, scope)
	return err
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *AnalyticsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AnalyticsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
