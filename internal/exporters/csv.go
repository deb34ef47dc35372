package exporters

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVHeader is the column layout shared by the exporter and the importer.
var CSVHeader = []string{"id", "title", "author", "genre", "year"}

// CSVExporter writes catalog snapshots as CSV.
type CSVExporter struct {
	books BookLister
}

func NewCSVExporter(books BookLister) *CSVExporter {
	return &CSVExporter{books: books}
}

// Export writes the header and one row per book to w.
func (e *CSVExporter) Export(ctx context.Context, w io.Writer) (ExportResult, error) {
	books, err := e.books.All(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("load catalog: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return ExportResult{}, fmt.Errorf("write header: %w", err)
	}
	for _, b := range books {
		record := []string{strconv.FormatUint(uint64(b.ID), 10), b.Title, b.Author, b.Genre, b.Year}
		if err := cw.Write(record); err != nil {
			return ExportResult{}, fmt.Errorf("write book %d: %w", b.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return ExportResult{}, fmt.Errorf("flush csv: %w", err)
	}

	return ExportResult{BooksProcessed: len(books)}, nil
}

// ExportToDir writes a timestamped snapshot (catalog-YYYYMMDD-HHMMSS.csv) into dir,
// creating dir when needed. The file is written under a temporary name and
// renamed once complete.
func (e *CSVExporter) ExportToDir(ctx context.Context, dir string, now time.Time) (ExportResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ExportResult{}, fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, SnapshotName(now))
	tmp, err := os.CreateTemp(dir, ".catalog-*.csv")
	if err != nil {
		return ExportResult{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	result, err := e.Export(ctx, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return ExportResult{}, err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return ExportResult{}, fmt.Errorf("move snapshot into place: %w", err)
	}

	result.Path = path
	return result, nil
}

// SnapshotName returns the file name used for a snapshot taken at now.
func SnapshotName(now time.Time) string {
	return "catalog-" + now.Format("20060102-150405") + ".csv"
}
