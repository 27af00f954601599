package auth

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

const migrationsDir = "data/sql/migrations"

// GetMigrationsFS returns the migration files for this package
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// MigrationsFS returns the migrations rooted at their directory, the
// layout bun/migrate expects
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(migrationsFS, migrationsDir)
}
