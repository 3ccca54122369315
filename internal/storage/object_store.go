package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"smartreads/internal/config"
)

const (
	snapshotPrefix = "snapshots/"
	signatureMeta  = "Signature"
)

var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotStore keeps catalog snapshots in an S3 compatible bucket under
// snapshots/<timestamp>.json.
type SnapshotStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

func NewSnapshotStore(cfg config.StorageConfig) (*SnapshotStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &SnapshotStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *SnapshotStore) EnsureBucket(ctx context.Context) error {
	bucket := s.cfg.BucketSnapshots
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// SnapshotKey is the object name for a snapshot taken at t. Names sort in
// time order.
func SnapshotKey(t time.Time) string {
	return snapshotPrefix + t.UTC().Format("20060102T150405.000Z") + ".json"
}

// Put stores body with its signature in the object metadata and returns the
// object name.
func (s *SnapshotStore) Put(ctx context.Context, takenAt time.Time, body []byte, signature string) (string, error) {
	key := SnapshotKey(takenAt)
	_, err := s.client.PutObject(ctx, s.cfg.BucketSnapshots, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: map[string]string{signatureMeta: signature},
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// Latest returns the newest snapshot body and its stored signature.
func (s *SnapshotStore) Latest(ctx context.Context) ([]byte, string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.cfg.BucketSnapshots, minio.ListObjectsOptions{Prefix: snapshotPrefix}) {
		if obj.Err != nil {
			return nil, "", fmt.Errorf("list snapshots: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) == 0 {
		return nil, "", ErrNoSnapshot
	}
	sort.Strings(keys)
	key := keys[len(keys)-1]

	obj, err := s.client.GetObject(ctx, s.cfg.BucketSnapshots, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", key, err)
	}
	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", key, err)
	}
	return body, metadataValue(info.UserMetadata, signatureMeta), nil
}

func metadataValue(meta map[string]string, name string) string {
	for k, v := range meta {
		if strings.EqualFold(k, name) || strings.EqualFold(k, "X-Amz-Meta-"+name) {
			return v
		}
	}
	return ""
}
