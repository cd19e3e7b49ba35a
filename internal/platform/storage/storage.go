// Package storage provides the document file store behind the reconciliation
// pipeline. Two backends exist: a local directory for development and a GCS
// bucket for deployments. References returned by Store are opaque to callers
// and resolvable only by the backend that issued them.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/config"
)

// ErrInvalidRef indicates a reference this backend did not issue
var ErrInvalidRef = errors.New("invalid storage reference")

// Storage stores and retrieves uploaded document files, scoped per company
type Storage interface {
	// Store persists the file bytes and returns an opaque reference
	Store(ctx context.Context, companyID uuid.UUID, fileName string, data []byte) (string, error)
	// Read resolves a reference issued by Store back to the file bytes
	Read(ctx context.Context, ref string) ([]byte, error)
}

// New builds the storage backend selected by configuration
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStorage(cfg.LocalDir)
	case "gcs":
		return NewGCSStorage(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
