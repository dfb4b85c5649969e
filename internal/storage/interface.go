package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an object or report does not exist
var ErrNotFound = errors.New("not found")

// ObjectStore defines the contract for blob-like storage operations
type ObjectStore interface {
	Store(ctx context.Context, name string, data []byte) error
	Retrieve(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, name string) error
}
