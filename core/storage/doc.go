// Package storage fetches library archives from object storage.
//
// It wraps the MinIO Go client behind a small Client interface so the archives a boot
// scans can be staged in an S3 or MinIO bucket instead of a local lib directory.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # BucketSource
//
// BucketSource implements container.ArchiveSource. It checks the bucket, lists the
// *.jar and *.zip objects under the configured prefix and downloads each one into
// memory. Archives larger than MaxArchiveMB are skipped when listed.
//
// # Usage
//
//	client, err := storage.NewClient(cfg)
//	src := storage.NewBucketSource(client, cfg, log)
//	scanner := container.NewScanner(nil, container.DirSource{Dir: "lib"}, src)
package storage
