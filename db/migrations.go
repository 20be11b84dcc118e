// Package db carries the SQL migration files compiled into the binary.
package db

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// Migrations returns a filesystem rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
