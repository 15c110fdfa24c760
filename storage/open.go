package storage

import (
	"context"
	"fmt"
	"strings"

	"covid-dashboard/utils"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend     string // file, sqlite, postgres or memory
	Dir         string
	SQLitePath  string
	PostgresDSN string
}

// Open builds the KV named by opts.Backend.
func Open(ctx context.Context, opts Options, retry *utils.RetryConfig) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "file":
		return NewFileKV(opts.Dir)
	case "sqlite":
		return NewSQLiteKV(opts.SQLitePath)
	case "postgres":
		return NewPostgresKV(ctx, opts.PostgresDSN, retry)
	case "memory":
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
