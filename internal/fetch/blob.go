package fetch

import (
	"context"
	"errors"
	"io"
	"net/url"

	"github.com/SmartChain-HD/AI/pkg/storage"
)

// Blob reads azblob://container/key locators through the storage system.
type Blob struct {
	store storage.System
}

func NewBlob(store storage.System) *Blob {
	return &Blob{store: store}
}

func (b *Blob) Open(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	container, key, err := bucketKey(u)
	if err != nil {
		return nil, err
	}

	rc, err := b.store.Download(ctx, container, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rc, nil
}
