package storage

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore keeps generated artefacts such as daily reports.
type ObjectStore interface {
	Put(ctx context.Context, bucket, object string, data []byte, contentType string) error
	Exists(ctx context.Context, bucket, object string) (bool, error)
	PresignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error)
	EnsureBucket(ctx context.Context, bucket string) error
}

// defaultRegion is MinIO's region; setting it avoids a location lookup per request.
const defaultRegion = "us-east-1"

type minioStore struct {
	client *minio.Client
}

func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: defaultRegion,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client}, nil
}

func (m *minioStore) Put(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	_, err := m.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *minioStore) PresignedURL(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, object, expiry, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioStore) EnsureBucket(ctx context.Context, bucket string) error {
	found, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
	}
	return nil
}
