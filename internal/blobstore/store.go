package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound reports a missing object. Callers that treat absence as a
// normal condition (an empty log, for instance) match on it with errors.Is.
var ErrNotFound = errors.New("object not found")

// Store is the object-storage surface the workflow depends on. Buckets are
// opaque location names; keys are flat strings with '/' separators.
type Store interface {
	// GetJSON fetches the object at bucket/key and decodes it into v.
	// Returns ErrNotFound when the key does not exist.
	GetJSON(ctx context.Context, bucket, key string, v interface{}) error

	// PutJSON serializes v and stores it at bucket/key, fully replacing any
	// prior content. Last writer wins; there is no versioning.
	PutJSON(ctx context.Context, bucket, key string, v interface{}) error

	// CopyPrefix duplicates every object whose key starts with prefix from
	// srcBucket to the same key in dstBucket. Copy order is unspecified and
	// the operation is not transactional: a failure partway leaves dstBucket
	// partially populated and is surfaced as an error.
	CopyPrefix(ctx context.Context, srcBucket, dstBucket, prefix string) error
}
