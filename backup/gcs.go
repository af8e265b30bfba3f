package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSSink writes backups to a Google Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

var (
	_ Sink   = (*GCSSink)(nil)
	_ Getter = (*GCSSink)(nil)
)

// NewGCSSink connects to GCS. Credentials come from credentialsJSON when it is
// set and from Application Default Credentials otherwise.
func NewGCSSink(ctx context.Context, bucket, prefix string, credentialsJSON []byte) (*GCSSink, error) {
	if bucket == "" {
		return nil, errors.New("backup: gcs bucket is required")
	}
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("backup: gcs client: %w", err)
	}
	return &GCSSink{client: client, bucket: bucket, prefix: prefix}, nil
}

func (g *GCSSink) Name() string { return "gcs:" + g.bucket }

func (g *GCSSink) Put(ctx context.Context, key string, data []byte) error {
	w := g.client.Bucket(g.bucket).Object(path.Join(g.prefix, key)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (g *GCSSink) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.client.Bucket(g.bucket).Object(path.Join(g.prefix, key)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Close releases the client.
func (g *GCSSink) Close() error { return g.client.Close() }
