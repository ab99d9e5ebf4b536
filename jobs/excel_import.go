package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/mailom-erp/mailom-erp/internal/importer"
	jobmetrics "github.com/mailom-erp/mailom-erp/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ExcelImportJob processes spooled workbook uploads.
type ExcelImportJob struct {
	Importer *importer.Service
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewExcelImportJob wires dependencies for the import handler.
func NewExcelImportJob(svc *importer.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExcelImportJob {
	return &ExcelImportJob{Importer: svc, Logger: logger, Metrics: metrics}
}

// Handle processes TaskExcelImport tasks. The spooled file is removed once
// the import finishes, successfully or not, so failed uploads do not pile
// up in the temp dir.
func (j *ExcelImportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Importer == nil {
		return errors.New("excel import: handler not configured")
	}
	var payload ExcelImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Path == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskExcelImport)
	var resultErr error
	defer func() { resultErr = tracker.End(resultErr) }()
	defer func() { _ = os.Remove(payload.Path) }()

	logger := j.logger().With(slog.String("path", payload.Path))
	logger.Info("starting excel import")

	result, err := j.Importer.ImportFile(ctx, payload.Path, payload.ActorID)
	if err != nil {
		resultErr = err
		logger.Error("excel import failed", slog.Any("error", err))
		return resultErr
	}

	logger.Info("excel import finished",
		slog.Int("purchases", result.Purchases),
		slog.Int("products", result.Products),
		slog.Int("dropped", result.Dropped))
	return nil
}

func (j *ExcelImportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskExcelImport))
	}
	return slog.Default().With(slog.String("job", TaskExcelImport))
}

func (j *ExcelImportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
