package objectstore

//go:generate mockgen -destination=mock/mock_client.go -package=mockobjectstore -source=interface.go

import (
	"context"
	"io"
)

// Client is the remote object store boundary. Objects live in a
// single configured namespace/bucket; callers address them by name.
type Client interface {
	// GetObject streams one object's bytes. A missing object is a
	// not-found error.
	GetObject(ctx context.Context, objectName string) (io.ReadCloser, error)

	// ListObjects enumerates object names in the bucket
	ListObjects(ctx context.Context) ([]string, error)
}
