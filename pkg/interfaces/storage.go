package interfaces

import (
	"context"
	"io"
)

// ObjectStorage stores opaque blobs (uploaded assets, published artifacts)
// under hierarchical keys and exposes their public URLs. Implementations map
// keys onto a filesystem, a bucket, or an in-memory store for tests.
type ObjectStorage interface {
	// Put writes the blob at the given key, replacing any previous content,
	// and returns the public URL the stored object is reachable at.
	Put(ctx context.Context, req PutObjectRequest) (*StoredObject, error)
	// Delete removes the blob at the given key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
	// List returns the stored objects whose keys start with the prefix.
	List(ctx context.Context, prefix string) ([]*StoredObject, error)
}

// PutObjectRequest describes a single blob write.
type PutObjectRequest struct {
	Key         string
	Content     io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// StoredObject reports where a blob landed.
type StoredObject struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}
