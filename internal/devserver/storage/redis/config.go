package redis

import "time"

// Config holds Redis connection and data retention settings
type Config struct {
	// URL is the Redis connection URL (redis://...)
	URL string
	// RoomTTL bounds how long an abandoned room lingers
	RoomTTL time.Duration
	// PhotoTTL bounds how long uploaded photos are kept
	PhotoTTL time.Duration
	// PoolSize is the connection pool size
	PoolSize int
	// MinIdleConns is the minimum number of idle connections
	MinIdleConns int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		RoomTTL:      24 * time.Hour,
		PhotoTTL:     24 * time.Hour,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}
