package storage

import (
	"context"
	"io"
)

type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, pattern string) ([]string, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
}

// StreamStorage accepts content too large to buffer, such as downloaded
// images, and resolves stored paths for external tools.
type StreamStorage interface {
	Storage
	SaveStream(ctx context.Context, path string, r io.Reader) (int64, error)
	Path(path string) (string, error)
}
