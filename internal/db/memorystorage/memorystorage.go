// Package memorystorage implements the user storage entirely in memory.
// It reuses the jsondb cache and lookup logic but never touches disk.
// Used in tests and as the fallback when neither a DSN nor a file path
// is configured.
package memorystorage

import (
	"context"

	"github.com/patric-chuzhbe/authsvc/internal/db/jsondb"
	"github.com/patric-chuzhbe/authsvc/internal/user"
)

// MemoryStorage is an in-memory user storage.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New creates an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users: []*user.User{},
			},
		},
	}, nil
}

// Close is a no-op: there is nothing to flush.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping is a no-op: the storage is always reachable.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
