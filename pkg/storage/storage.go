package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("not found")

// Storage abstracts the destination for exported snapshot files. Names are
// flat file names; List returns them sorted lexicographically, which for
// snapshot archives is also chronological.
type Storage interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
}
