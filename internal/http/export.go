package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportController queues background catalog snapshots.
type ExportController struct {
	queue  ExportEnqueuer
	dir    string
	flash  FlashStore
	logger *zap.Logger
}

func NewExportController(queue ExportEnqueuer, dir string, flash FlashStore, logger *zap.Logger) *ExportController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportController{queue: queue, dir: dir, flash: flash, logger: logger}
}

// Enqueue schedules an export and returns to the listing.
func (ec *ExportController) Enqueue(c *gin.Context) {
	id, err := ec.queue.EnqueueExport(c.Request.Context(), ec.dir)
	if err != nil {
		respondError(c, ec.logger, err)
		return
	}

	ec.logger.Info("catalog export queued", zap.String("task_id", id), zap.String("dir", ec.dir))
	if ec.flash != nil {
		ec.flash.PutFlash(c.Request.Context(), "Catalog export queued")
	}
	c.Redirect(http.StatusSeeOther, firstPagePath)
}
