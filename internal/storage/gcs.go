package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

var _ Bucket = (*GCS)(nil)

type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// NewGCS uses application default credentials.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: missing bucket name")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &GCS{client: client, bucket: client.Bucket(bucket), name: bucket}, nil
}

func (g *GCS) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	writer := g.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("%w: gcs %s: %v", ErrUpload, key, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: gcs %s: %v", ErrUpload, key, err)
	}

	return fmt.Sprintf("gs://%s/%s", g.name, key), nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
