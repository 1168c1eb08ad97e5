package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source is a re-openable location of the denormalized export. Every stage
// opens it again and reads it from the start.
type Source interface {
	// Name identifies the source in logs and reports.
	Name() string

	// Open returns a fresh reader positioned at the first byte.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return f.Path }

func (f *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// S3Scheme prefixes object locations, e.g. s3://bucket/exports/data.tsv.
const S3Scheme = "s3://"

// Open resolves a location into a Source: s3://bucket/key for S3 objects,
// anything else is a local path.
func Open(ctx context.Context, location string, s3cfg S3Config) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("source location is required")
	}
	if !strings.HasPrefix(location, S3Scheme) {
		return &FileSource{Path: location}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, S3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 location %q: expected s3://bucket/key", location)
	}
	return NewS3Source(ctx, bucket, key, s3cfg)
}
