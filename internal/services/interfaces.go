package services

import (
	"context"

	"github.com/mrlokans/library/internal/entities"
)

// BookReader provides read-only access to the catalog.
// Use this interface when you only need to query books.
type BookReader interface {
	ListPage(ctx context.Context, limit, offset int) ([]entities.Book, error)
	Count(ctx context.Context) (int64, error)
	Search(ctx context.Context, term string) ([]entities.Book, error)
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	All(ctx context.Context) ([]entities.Book, error)
}

// BookWriter persists catalog changes.
type BookWriter interface {
	Create(ctx context.Context, book *entities.Book) error
	CreateBatch(ctx context.Context, books []entities.Book) error
	Update(ctx context.Context, book *entities.Book) error
	Delete(ctx context.Context, id uint) error
}

// BookStore combines read and write access. Implemented by books.Repository.
type BookStore interface {
	BookReader
	BookWriter
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	Imported int
	Failed   int
	Errors   []RowError
}

// RowError ties a validation failure to its position in the import source.
type RowError struct {
	Row int
	Err error
}
