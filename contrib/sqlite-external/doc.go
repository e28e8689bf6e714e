// Package sqliteexternal provides optional external SQLite drivers.
//
// This package is part of the github.com/FocuswithJustin/JuniperScripture module
// and provides a CGO-based SQLite driver for installations that already ship
// CGO builds.
//
// # CGO SQLite Driver
//
// To use the CGO driver (github.com/mattn/go-sqlite3), build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/scripture
//
// core/sqlite then imports this package instead of modernc.org/sqlite.
//
// # Default Pure Go Driver
//
// By default translations are read through modernc.org/sqlite, which requires
// no CGO. See github.com/FocuswithJustin/JuniperScripture/core/sqlite.
package sqliteexternal
