//go:build cgo_sqlite

// Package sqliteexternal registers mattn/go-sqlite3 under the "sqlite3" driver name.
//
// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package sqliteexternal

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const (
	// DriverName is the SQL driver name registered by mattn/go-sqlite3.
	DriverName = "sqlite3"

	// DriverType identifies this as the CGO implementation.
	DriverType = "cgo"
)
