package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
)

// ImportService bulk-loads books, validating each one like a form submission.
type ImportService struct {
	catalog *CatalogService
	writer  BookWriter
	logger  *zap.Logger
}

func NewImportService(catalog *CatalogService, writer BookWriter, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{catalog: catalog, writer: writer, logger: logger}
}

// Import validates every input and inserts the valid ones in one batch.
// Rows are numbered from firstRow so errors can point at the source line.
// Invalid rows are reported in the result and never abort the import.
func (s *ImportService) Import(ctx context.Context, inputs []BookInput, firstRow int) (ImportResult, error) {
	var result ImportResult
	books := make([]entities.Book, 0, len(inputs))

	for i, in := range inputs {
		clean, err := s.catalog.Validate(in)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RowError{Row: firstRow + i, Err: err})
			continue
		}
		books = append(books, entities.Book{
			Title:  clean.Title,
			Author: clean.Author,
			Genre:  clean.Genre,
			Year:   clean.Year,
		})
	}

	if err := s.writer.CreateBatch(ctx, books); err != nil {
		return result, fmt.Errorf("insert %d books: %w", len(books), err)
	}
	result.Imported = len(books)

	s.logger.Info("Import finished",
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed))

	return result, nil
}
