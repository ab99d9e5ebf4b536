package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskExcelImport loads a spooled workbook into the database.
	TaskExcelImport = "import:excel"
	// TaskAnalyticsWarmup pre-populates the cost-analysis caches.
	TaskAnalyticsWarmup = "analytics:warmup"
	// TaskDeadStockScan flags long-unsold products.
	TaskDeadStockScan = "inventory:dead_stock_scan"
)

// ExcelImportPayload points the worker at a spooled upload.
type ExcelImportPayload struct {
	Path    string `json:"path"`
	ActorID int64  `json:"actorId"`
}

// NewExcelImportTask constructs an Asynq task for a spooled workbook.
func NewExcelImportTask(payload ExcelImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExcelImport, data, asynq.Queue(QueueDefault)), nil
}

// AnalyticsWarmupPayload carries scheduling metadata.
type AnalyticsWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduledFor"`
}

// NewAnalyticsWarmupTask constructs a warmup task.
func NewAnalyticsWarmupTask(at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(AnalyticsWarmupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAnalyticsWarmup, data, asynq.Queue(QueueDefault)), nil
}

// DeadStockScanPayload configures the stale-stock scan.
type DeadStockScanPayload struct {
	OlderThanDays int `json:"olderThanDays"`
}

// NewDeadStockScanTask constructs a dead-stock scan task.
func NewDeadStockScanTask(olderThanDays int) (*asynq.Task, error) {
	data, err := json.Marshal(DeadStockScanPayload{OlderThanDays: olderThanDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeadStockScan, data, asynq.Queue(QueueDefault)), nil
}
