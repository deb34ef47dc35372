package http

import (
	"context"
	"time"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

// Controllers depend on the narrow interfaces below rather than on concrete
// services, so tests can swap in fakes.

// BookCatalog is the catalog surface used by BooksController.
// Implemented by *services.CatalogService.
type BookCatalog interface {
	ListPage(ctx context.Context, number int) (*services.Page, error)
	Search(ctx context.Context, term string) ([]entities.Book, error)
	Get(ctx context.Context, id uint) (*entities.Book, error)
	Create(ctx context.Context, in services.BookInput) (*entities.Book, error)
	Update(ctx context.Context, id uint, in services.BookInput) (*entities.Book, error)
	Delete(ctx context.Context, id uint) error
	Normalize(in services.BookInput) services.BookInput
}

// ExportEnqueuer queues a background catalog snapshot.
// Implemented by *tasks.Client.
type ExportEnqueuer interface {
	EnqueueExport(ctx context.Context, dir string) (string, error)
}

// Pinger checks database connectivity. Implemented by *database.Database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ScheduleStatus reports the periodic export schedule. Implemented by
// *scheduler.ExportScheduler.
type ScheduleStatus interface {
	IsRunning() bool
	NextRunTime() *time.Time
}

// FlashStore carries one-shot messages across a redirect.
// Implemented by *security.SessionManager.
type FlashStore interface {
	PutFlash(ctx context.Context, message string)
	PopFlash(ctx context.Context) string
}

// MutationRecorder counts successful catalog writes.
type MutationRecorder interface {
	RecordMutation(operation string)
}
