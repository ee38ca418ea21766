package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

var _ Bucket = (*S3)(nil)

type S3 struct {
	uploader *s3manager.Uploader
	bucket   string
}

// NewS3 reads credentials from the default AWS chain.
func NewS3(bucket, region string) (*S3, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3: missing bucket name")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return &S3{uploader: s3manager.NewUploader(sess), bucket: bucket}, nil
}

func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: s3 %s: %v", ErrUpload, key, err)
	}

	return out.Location, nil
}
