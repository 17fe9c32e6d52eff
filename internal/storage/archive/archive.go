package archive

import (
	"context"
	"fmt"

	"github.com/newthinker/macross/internal/config"
	"github.com/newthinker/macross/internal/core"
)

// Storage persists backtest run artifacts. Paths are slash-separated
// and relative, e.g. "AAPL/20230104T000000_<run>/summary.txt".
type Storage interface {
	// Name identifies the backend for logs and metrics labels
	Name() string

	// Write stores data at the given path, creating parents as needed
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all stored paths under the prefix, sorted
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error
}

// New builds the storage backend selected by the output config.
func New(cfg config.OutputConfig) (Storage, error) {
	switch cfg.Type {
	case "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown output type %q", cfg.Type))
	}
}
