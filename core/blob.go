package core

import (
	"context"
	"io"
)

// BlobStore is any service that can durably store binary objects and derive
// a public retrieval URL for them. PublicURL is purely derived and must be
// valid for any path whose Upload succeeded.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, content io.Reader) error
	PublicURL(path string) string
}
