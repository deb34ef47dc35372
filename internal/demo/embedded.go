package demo

import (
	"bytes"
	"context"
	"embed"
	"fmt"

	"github.com/mrlokans/library/internal/importers"
	"github.com/mrlokans/library/internal/services"
)

//go:embed assets
var embeddedAssets embed.FS

const sampleCatalogPath = "assets/books.csv"

// BookCounter reports how many books are stored.
type BookCounter interface {
	Count(ctx context.Context) (int64, error)
}

// CatalogImporter validates and stores parsed rows.
type CatalogImporter interface {
	Import(ctx context.Context, inputs []services.BookInput, firstRow int) (services.ImportResult, error)
}

// SampleCatalog returns the parsed sample catalog bundled with the binary.
func SampleCatalog() ([]services.BookInput, error) {
	data, err := embeddedAssets.ReadFile(sampleCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return importers.ParseCatalogCSV(bytes.NewReader(data))
}

// SeedIfEmpty loads the sample catalog into an empty database so a demo
// instance has something to browse. A non-empty catalog is left alone and
// zero is returned.
func SeedIfEmpty(ctx context.Context, counter BookCounter, importer CatalogImporter) (int, error) {
	total, err := counter.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	if total > 0 {
		return 0, nil
	}

	inputs, err := SampleCatalog()
	if err != nil {
		return 0, err
	}

	result, err := importer.Import(ctx, inputs, importers.FirstDataRow)
	if err != nil {
		return result.Imported, fmt.Errorf("seed catalog: %w", err)
	}
	return result.Imported, nil
}
