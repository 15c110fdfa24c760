package storage

import (
	"context"
	"errors"

	"covid-dashboard/models"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// KV is the persistent key-value cache behind the record store. Get reports
// ok=false for a key that was never set.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// DatasetWriter is satisfied by anything that can export a dataset.
type DatasetWriter interface {
	Write(dataset models.Dataset) error
}
