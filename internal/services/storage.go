package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// ObjectStore holds uploaded images and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageExtension returns the file extension for an accepted image content type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// NewImageObjectName builds "<prefix>/<uuid><ext>".
func NewImageObjectName(prefix, contentType string) string {
	ext, _ := ImageExtension(contentType)
	return path.Join(prefix, uuid.NewString()+ext)
}

type GCSObjectStore struct {
	client *storage.Client
	bucket string
}

// NewGCSObjectStore uses application default credentials.
func NewGCSObjectStore(ctx context.Context, bucket string) (*GCSObjectStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	return &GCSObjectStore{client: client, bucket: bucket}, nil
}

func (s *GCSObjectStore) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: gcs write: %v", utils.ErrExternalServiceFailure, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: gcs close: %v", utils.ErrExternalServiceFailure, err)
	}
	return publicObjectURL(s.bucket, objectName), nil
}

func (s *GCSObjectStore) Close() error {
	return s.client.Close()
}

func publicObjectURL(bucket, objectName string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + (&url.URL{Path: objectName}).EscapedPath()
}

// unconfiguredStore is used when no bucket is set; every upload fails.
type unconfiguredStore struct{}

func NewUnconfiguredObjectStore() ObjectStore { return unconfiguredStore{} }

func (unconfiguredStore) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", utils.ErrStorageNotConfigured
}
