// Package objectstore pushes backup snapshots to S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mdr-travel/go_backend/internal/apperr"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

type Snapshotter struct {
	client *minio.Client
	bucket string
}

func New(cfg Config) (*Snapshotter, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("objectstore: not configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: create client: %w", err)
	}
	return &Snapshotter{client: client, bucket: cfg.Bucket}, nil
}

// SnapshotName is the object key for a backup taken at t.
func SnapshotName(t time.Time) string {
	return fmt.Sprintf("backups/%s/mdr-backup-%s.json", t.UTC().Format("2006/01"), t.UTC().Format("20060102-150405"))
}

func (s *Snapshotter) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Put uploads a JSON document and returns its object key.
func (s *Snapshotter) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "No se pudo preparar el almacenamiento", err)
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUpstream, "No se pudo guardar el respaldo", err)
	}
	return name, nil
}
