// Package storage provides read access to the JSON batch files consumed by
// the ingestion pipelines, from the local filesystem or S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Source opens batch files by path. Implementations report a missing file
// with an error satisfying errors.Is(err, fs.ErrNotExist); the law
// pipeline's multi-file mode relies on that to skip absent files.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// SourceType represents the batch-file backend type
type SourceType string

const (
	SourceTypeLocal SourceType = "local"
	SourceTypeS3    SourceType = "s3"
)

// SourceConfig holds configuration for a batch-file source
type SourceConfig struct {
	Type         SourceType
	LocalPath    string // base directory for local files, empty means paths are used as given
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// NewSource creates a source instance based on configuration
func NewSource(cfg SourceConfig) (Source, error) {
	switch cfg.Type {
	case SourceTypeLocal:
		return NewLocalSource(cfg.LocalPath), nil
	case SourceTypeS3:
		return NewS3Source(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewSourceFromEnv creates a source instance from environment variables
func NewSourceFromEnv() (Source, error) {
	sourceType := os.Getenv("STORAGE_TYPE")
	if sourceType == "" {
		sourceType = "local" // Default to local for development
	}

	switch SourceType(sourceType) {
	case SourceTypeLocal:
		return NewLocalSource(os.Getenv("STORAGE_LOCAL_PATH")), nil

	case SourceTypeS3:
		cfg := SourceConfig{
			Type:     SourceTypeS3,
			S3Bucket: os.Getenv("AWS_S3_BUCKET"),
			S3Region: os.Getenv("AWS_REGION"),
		}
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1" // Default region
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}

		return NewS3Source(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", sourceType)
	}
}
