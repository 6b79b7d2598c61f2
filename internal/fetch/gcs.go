package fetch

import (
	"context"
	"errors"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
)

// GCS reads gs://bucket/object locators.
type GCS struct {
	client *gcs.Client
}

func NewGCS(client *gcs.Client) *GCS {
	return &GCS{client: client}
}

// NewGCSFromEnv creates a client from application default credentials.
func NewGCSFromEnv(ctx context.Context) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewGCS(client), nil
}

func (g *GCS) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	bucket, object, err := bucketKey(u)
	if err != nil {
		return nil, err
	}

	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// Close releases the client.
func (g *GCS) Close() error {
	return g.client.Close()
}
