package entrypoint

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/services"
)

// Catalog bundles the storage and service layers shared by the server and
// the one-shot CLI commands.
type Catalog struct {
	DB       *database.Database
	Books    *books.Repository
	Service  *services.CatalogService
	Importer *services.ImportService
}

// OpenCatalog connects to the configured database and builds the services.
func OpenCatalog(cfg config.Database, logger *zap.Logger) (*Catalog, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := books.NewRepository(db.DB)
	service := services.NewCatalogService(repo, logger.Named("catalog"))

	return &Catalog{
		DB:       db,
		Books:    repo,
		Service:  service,
		Importer: services.NewImportService(service, repo, logger.Named("import")),
	}, nil
}

func (c *Catalog) Close() error {
	return c.DB.Close()
}
