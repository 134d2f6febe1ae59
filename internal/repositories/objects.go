package repositories

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rohits-web03/notevault/internal/config"
)

// ObjectStore uploads note attachments and returns a URL the browser can open.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// NewObjectStore builds the store selected by cfg.Driver. It returns a nil
// store when uploads are disabled.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "r2":
		return NewR2Store(cfg)
	case "minio":
		return NewMinioStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
