package storage

import (
	"context"
	"errors"
	"fmt"
)

const (
	DriverLocal = "local"
	DriverGCS   = "gcs"
	DriverS3    = "s3"
)

// ErrUpload is returned when an object could not be written.
var ErrUpload = errors.New("upload failed")

// Bucket stores rendered documents. Put returns a reference to the stored
// object that can be handed to clients.
type Bucket interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Options struct {
	Driver  string
	Bucket  string
	Dir     string
	BaseURL string
	Region  string
}

// New opens the bucket selected by opts.Driver.
func New(ctx context.Context, opts Options) (Bucket, error) {
	switch opts.Driver {
	case "", DriverLocal:
		return NewLocal(opts.Dir, opts.BaseURL)
	case DriverGCS:
		return NewGCS(ctx, opts.Bucket)
	case DriverS3:
		return NewS3(opts.Bucket, opts.Region)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
