package objectstorage

import (
	"context"
	"time"
)

// ObjectStorage stores project uploads and deliverables. Clients transfer
// bytes directly using presigned URLs.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, req UploadRequest) (*PresignedURL, error)
	PresignDownload(ctx context.Context, key string, fileName string, ttl time.Duration) (*PresignedURL, error)
	Head(ctx context.Context, key string) (*ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

type UploadRequest struct {
	Key         string
	ContentType string
	Size        int64
	TTL         time.Duration
}

// PresignedURL is a time-boxed capability for one object.
type PresignedURL struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

// ObjectInfo is the metadata of a stored object. Head returns a not-found
// AppError when the object does not exist.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// VirusScanner inspects an uploaded object.
type VirusScanner interface {
	Scan(ctx context.Context, key string) (clean bool, err error)
}
