// Package storage keeps exported plan documents on the local filesystem or in S3.
package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/planwise/business-planner/internal/core/ports"
)

// Config holds configuration for blob storage. An empty S3Bucket selects the
// local filesystem.
type Config struct {
	LocalPath    string
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	AWSAccessKey string
	AWSSecretKey string
}

// New creates the storage backend selected by cfg.
func New(cfg Config) (ports.BlobStorage, error) {
	if cfg.S3Bucket != "" {
		return NewS3Storage(cfg)
	}
	return NewLocalStorage(cfg.LocalPath)
}

// generateStoragePath generates a unique storage path for a file.
func generateStoragePath(fileID uuid.UUID, filename string) string {
	ext := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filename, ext)
	baseName = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_").Replace(baseName)

	id := fileID.String()
	return fmt.Sprintf("%s/%s_%s%s", id[:2], id, baseName, ext)
}

func contentType(filename string) string {
	switch filepath.Ext(filename) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
