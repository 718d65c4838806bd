package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"codex-manager/core/codex"
	"codex-manager/core/retry"
	"codex-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectSource reads third-party codex content from a single named object in
// a bucket. Object storage reads are the flakiest I/O in the pipeline, so
// the fetch goes through the retry primitive.
type ObjectSource struct {
	client     storage.Client
	bucket     string
	objectName string
	policy     retry.Policy
}

// NewObjectSource creates an object-storage-backed source.
func NewObjectSource(client storage.Client, bucket, objectName string, policy retry.Policy) *ObjectSource {
	return &ObjectSource{
		client:     client,
		bucket:     bucket,
		objectName: objectName,
		policy:     policy,
	}
}

// ID returns the source identifier.
func (s *ObjectSource) ID() string {
	return "storage"
}

// Category returns the diagnostics group.
func (s *ObjectSource) Category() string {
	return CategoryObject
}

// ReadAll fetches and decodes the records object, retrying transient fetch
// failures with backoff.
func (s *ObjectSource) ReadAll(ctx context.Context) ([]codex.RawRecord, error) {
	data, err := retry.Fetch(ctx, s.objectName, s.policy, func(ctx context.Context) ([]byte, error) {
		obj, err := s.client.GetObject(ctx, s.bucket, s.objectName, minio.GetObjectOptions{})
		if err != nil {
			return nil, err
		}
		defer obj.Close()
		return io.ReadAll(obj)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", s.bucket, s.objectName, err)
	}

	var records []codex.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", s.bucket, s.objectName, err)
	}

	return records, nil
}
