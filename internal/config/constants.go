package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./library.db"

	// DefaultExportDir is where scheduled catalog snapshots are written
	DefaultExportDir = "./exports"
)
