package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/exporters"
)

// ExportCatalogQueueName identifies the catalog snapshot queue.
const ExportCatalogQueueName = "export_catalog"

// Snapshotter writes a timestamped catalog snapshot into a directory.
type Snapshotter interface {
	ExportToDir(ctx context.Context, dir string, now time.Time) (exporters.ExportResult, error)
}

// ExportCatalogTask writes a CSV snapshot of the whole catalog into Dir.
type ExportCatalogTask struct {
	Dir string `json:"dir"`
}

// Config returns the queue configuration for export tasks.
func (t ExportCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ExportCatalogQueueName,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportCatalogProcessor creates a processor function for ExportCatalogTask.
func ExportCatalogProcessor(exporter Snapshotter, logger *zap.Logger) backlite.QueueProcessor[ExportCatalogTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task ExportCatalogTask) error {
		if exporter == nil {
			return fmt.Errorf("catalog exporter not configured")
		}
		if task.Dir == "" {
			return fmt.Errorf("export task has no target directory")
		}

		result, err := exporter.ExportToDir(ctx, task.Dir, time.Now())
		if err != nil {
			return fmt.Errorf("export catalog: %w", err)
		}

		logger.Info("catalog exported",
			zap.String("path", result.Path),
			zap.Int("books", result.BooksProcessed))
		return nil
	}
}

// NewExportCatalogQueue creates a backlite queue for catalog export tasks.
func NewExportCatalogQueue(exporter Snapshotter, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(ExportCatalogProcessor(exporter, logger))
}

// EnqueueExport adds a single export task for dir and returns its task ID.
func (c *Client) EnqueueExport(ctx context.Context, dir string) (string, error) {
	ids, err := c.Add(ExportCatalogTask{Dir: dir}).Ctx(ctx).Save()
	if err != nil {
		return "", fmt.Errorf("enqueue export: %w", err)
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("enqueue export: no task id returned")
	}
	return ids[0], nil
}
