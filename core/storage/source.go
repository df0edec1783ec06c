package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"

	"webboot/core/container"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrBucketMissing is returned when the configured bucket does not exist.
var ErrBucketMissing = errors.New("bucket does not exist")

// BucketSource provides the archives staged under a prefix of a bucket.
// Archives are downloaded into memory; nothing is written to disk.
type BucketSource struct {
	client   Client
	bucket   string
	prefix   string
	maxBytes int64
	logger   *zap.Logger
}

// NewBucketSource creates an archive source over cfg.Bucket.
func NewBucketSource(client Client, cfg Config, logger *zap.Logger) *BucketSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxMB := cfg.MaxArchiveMB
	if maxMB <= 0 {
		maxMB = 64
	}
	return &BucketSource{
		client:   client,
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		maxBytes: int64(maxMB) << 20,
		logger:   logger.With(zap.String("bucket", cfg.Bucket), zap.String("prefix", cfg.Prefix)),
	}
}

// Archives implements container.ArchiveSource.
func (s *BucketSource) Archives(ctx context.Context) ([]*container.Archive, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketMissing, s.bucket)
	}

	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, err
	}

	archives := make([]*container.Archive, 0, len(keys))
	for _, key := range keys {
		a, err := s.fetch(ctx, key)
		if err != nil {
			for _, done := range archives {
				_ = done.Close()
			}
			return nil, err
		}
		archives = append(archives, a)
	}
	s.logger.Debug("Fetched bucket archives", zap.Int("count", len(archives)))
	return archives, nil
}

// listKeys returns the sorted archive keys under the prefix. The listing runs on its
// own context so an early return releases the lister goroutine.
func (s *BucketSource) listKeys(ctx context.Context) ([]string, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(listCtx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, obj.Err)
		}
		if !container.IsArchiveName(obj.Key) {
			continue
		}
		if obj.Size > s.maxBytes {
			s.logger.Warn("Skipping oversized archive", zap.String("key", obj.Key), zap.Int64("size", obj.Size))
			continue
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *BucketSource) fetch(ctx context.Context, key string) (*container.Archive, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get archive %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", key, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("archive %s exceeds %d bytes", key, s.maxBytes)
	}
	a, err := container.ReadArchive(path.Base(key), data)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", key, err)
	}
	return a, nil
}
