package exporters

import (
	"context"

	"github.com/mrlokans/library/internal/entities"
)

// BookLister supplies the full catalog in export order.
type BookLister interface {
	All(ctx context.Context) ([]entities.Book, error)
}

type ExportResult struct {
	Path           string `json:"path,omitempty"`
	BooksProcessed int    `json:"books_processed"`
}
