package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultObject is the object name used when none is configured.
const DefaultObject = "job_embeddings.index"

// MinIOOptions configures an S3-compatible artifact location.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Object    string
	Region    string
	Secure    bool
}

// MinIOStore keeps the artifact as one object in an S3-compatible bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	object string
}

func NewMinIOStore(opts MinIOOptions) (*MinIOStore, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}
	if opts.Object == "" {
		opts.Object = DefaultObject
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinIOStore{client: client, bucket: opts.Bucket, object: opts.Object}, nil
}

func (s *MinIOStore) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.object)
}

func (s *MinIOStore) Load(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.loadError(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.loadError(err)
	}
	return data, nil
}

func (s *MinIOStore) loadError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	}
	return fmt.Errorf("get object %s: %w", s.Location(), err)
}

func (s *MinIOStore) Save(ctx context.Context, data []byte) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", s.Location(), err)
	}
	return nil
}
