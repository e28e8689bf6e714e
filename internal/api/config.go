package api

import "time"

// Config holds server configuration.
type Config struct {
	Addr string
	// PrefsPath, when set, receives the active translation and position
	// after every switch and navigation.
	PrefsPath      string
	AllowedOrigins []string // WebSocket origins (empty = allow all)
	ShutdownGrace  time.Duration
}

// Version is reported by /health.
var Version = "dev"
