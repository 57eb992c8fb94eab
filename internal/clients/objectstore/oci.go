package objectstore

import (
	"context"
	"io"
	"net/http"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

// Config holds configuration for the OCI object storage client
type Config struct {
	Namespace   string
	Bucket      string
	Region      string
	TenancyID   string
	UserID      string
	Fingerprint string
	PrivateKey  string
}

// ociClient implements Client against Oracle Object Storage
type ociClient struct {
	client    objectstorage.ObjectStorageClient
	namespace string
	bucket    string
}

// New creates an object store client from raw API-key credentials
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperrors.InvalidArgument("cfg is required")
	}
	if cfg.Namespace == "" {
		return nil, apperrors.InvalidArgument("namespace is required")
	}
	if cfg.Bucket == "" {
		return nil, apperrors.InvalidArgument("bucket is required")
	}

	provider := common.NewRawConfigurationProvider(
		cfg.TenancyID,
		cfg.UserID,
		cfg.Region,
		cfg.Fingerprint,
		cfg.PrivateKey,
		nil,
	)

	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create object storage client")
	}

	return &ociClient{
		client:    client,
		namespace: cfg.Namespace,
		bucket:    cfg.Bucket,
	}, nil
}

// GetObject streams one object's bytes
func (c *ociClient) GetObject(ctx context.Context, objectName string) (io.ReadCloser, error) {
	resp, err := c.client.GetObject(ctx, objectstorage.GetObjectRequest{
		NamespaceName: common.String(c.namespace),
		BucketName:    common.String(c.bucket),
		ObjectName:    common.String(objectName),
	})
	if err != nil {
		if serviceErr, ok := common.IsServiceError(err); ok && serviceErr.GetHTTPStatusCode() == http.StatusNotFound {
			return nil, apperrors.NotFoundf("object not found: %s", objectName)
		}
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to get object")
	}

	return resp.Content, nil
}

// ListObjects enumerates object names in the bucket
func (c *ociClient) ListObjects(ctx context.Context) ([]string, error) {
	var (
		names []string
		start *string
	)

	for {
		resp, err := c.client.ListObjects(ctx, objectstorage.ListObjectsRequest{
			NamespaceName: common.String(c.namespace),
			BucketName:    common.String(c.bucket),
			Start:         start,
		})
		if err != nil {
			return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to list objects")
		}

		for _, obj := range resp.ListObjects.Objects {
			if obj.Name != nil {
				names = append(names, *obj.Name)
			}
		}

		if resp.ListObjects.NextStartWith == nil {
			break
		}
		start = resp.ListObjects.NextStartWith
	}

	return names, nil
}
