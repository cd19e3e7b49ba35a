package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps files under baseDir/<company>/<uuid>_<name>.
// References are paths relative to baseDir, prefixed with "file://".
type LocalStorage struct {
	baseDir string
}

func NewLocalStorage(baseDir string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, errors.New("local storage base directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir}, nil
}

func (s *LocalStorage) Store(_ context.Context, companyID uuid.UUID, fileName string, data []byte) (string, error) {
	// The stored name gets a fresh UUID so colliding uploads never overwrite
	rel := filepath.Join(companyID.String(), uuid.New().String()+"_"+filepath.Base(fileName))
	full := filepath.Join(s.baseDir, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create company directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "file://" + filepath.ToSlash(rel), nil
}

func (s *LocalStorage) Read(_ context.Context, ref string) ([]byte, error) {
	rel, ok := strings.CutPrefix(ref, "file://")
	if !ok {
		return nil, ErrInvalidRef
	}
	// Reject refs escaping the base directory
	clean := filepath.Clean(filepath.FromSlash(rel))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, ErrInvalidRef
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", ref, err)
	}
	return data, nil
}
