package blob

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the storage surface needed to mirror a local tree into a bucket.
// It is implemented by S3Backend and by in-memory fakes in tests.
type ObjectStore interface {
	// ListObjectsPage returns a single page of a bucket listing.
	// Callers follow NextContinuationToken while IsTruncated is set.
	ListObjectsPage(ctx context.Context, params *ListObjectsParams) (*ListObjectsPage, error)

	// PutObject uploads a single object
	PutObject(ctx context.Context, params *PutObjectParams) (*PutObjectResponse, error)

	// DeleteObjects removes keys in bulk and reports per-key outcomes
	DeleteObjects(ctx context.Context, bucket string, keys []string) (*DeleteObjectsResult, error)
}

// ===================================================================================================

type ListObjectsParams struct {
	Bucket            string
	Prefix            string
	ContinuationToken string
	MaxKeys           int32
}

type ListObjectsPage struct {
	Objects               []*BlobInfo
	IsTruncated           bool
	NextContinuationToken string
}

type BlobInfo struct {
	Key          string
	ETag         string
	Size         int64
	LastModified time.Time
}

// ===================================================================================================

type PutObjectParams struct {
	Bucket       string
	Key          string
	Body         io.Reader
	Size         int64
	ACL          string
	ContentType  string
	CacheControl string
	Expires      time.Time
	Metadata     map[string]string
}

type PutObjectResponse struct {
	Key          string
	Version      string
	ETag         string
	Size         int64
	LastModified time.Time
}

// ===================================================================================================

type DeleteError struct {
	Key     string
	Code    string
	Message string
}

type DeleteObjectsResult struct {
	Deleted []string
	Errors  []DeleteError
}

// Failed reports whether any key could not be deleted
func (r *DeleteObjectsResult) Failed() bool {
	return r != nil && len(r.Errors) > 0
}
