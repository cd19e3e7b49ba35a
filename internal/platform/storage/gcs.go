package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSStorage stores files in a GCS bucket, one prefix per company.
// References are gs:// URIs. Application Default Credentials are assumed.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket cannot be empty")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) Store(ctx context.Context, companyID uuid.UUID, fileName string, data []byte) (string, error) {
	object := path.Join(companyID.String(), uuid.New().String()+"_"+path.Base(fileName))

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, object), nil
}

func (s *GCSStorage) Read(ctx context.Context, ref string) ([]byte, error) {
	trimmed, ok := strings.CutPrefix(ref, "gs://")
	if !ok {
		return nil, ErrInvalidRef
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidRef
	}

	r, err := s.client.Bucket(parts[0]).Object(parts[1]).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object %q: %w", ref, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %q: %w", ref, err)
	}
	return data, nil
}

// Close releases the underlying GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
