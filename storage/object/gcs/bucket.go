package gcsobj

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/shule/core"
)

// blobStore stores binary objects in a Google Cloud Storage bucket. Public
// URLs are served from the CDN domain when one is configured, straight
// from GCS otherwise.
type blobStore struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
}

var _ core.BlobStore = (*blobStore)(nil)

func NewBlobStore(ctx context.Context, conf *core.Config) (*blobStore, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if conf.Storage.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Storage.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating storage client")
	}
	return &blobStore{
		client:    client,
		bucket:    conf.Storage.Bucket,
		cdnDomain: conf.Storage.CDNDomain,
	}, nil
}

func (bs *blobStore) Upload(ctx context.Context, path, contentType string, content io.Reader) error {
	w := bs.client.Bucket(bs.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "writing object %s", path)
	}
	// the write is only durable once Close returns nil
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "closing object %s", path)
	}
	return nil
}

func (bs *blobStore) PublicURL(path string) string {
	if bs.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", bs.cdnDomain, path)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucket, path)
}

func (bs *blobStore) Close() error {
	return bs.client.Close()
}
