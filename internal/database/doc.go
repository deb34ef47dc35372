// Package database provides the data access layer for the catalog.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), auto-migration
//	└── books/           # Book CRUD, paging and search
//
// # Usage
//
//	db, err := database.Open(cfg.Database, logger)
//	repo := books.NewRepository(db.DB)
//	list, err := repo.ListPage(ctx, 10, 0)
//
// The books.Repository implements services.BookStore; the compile-time check
// lives next to the repository.
package database
