package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// writeTimeout bounds a single blob upload.
const writeTimeout = 2 * time.Minute

// GCSStore is the Google Cloud Storage implementation of BlobStore. All
// blobs live in a single bucket under their logical path names.
type GCSStore struct {
	client *gcs.Client
	bucket string
}

// NewGCSStore creates a store backed by the given bucket. When
// credentialsFile is empty, Application Default Credentials are used.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSStore{client: client, bucket: bucket}, nil
}

// Write uploads data under name, overwriting any prior object.
func (s *GCSStore) Write(ctx context.Context, name string, data []byte, opts WriteOptions) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.ContentEncoding = opts.ContentEncoding

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write blob %q: %w", name, err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize blob %q: %w", name, err)
	}

	return nil
}

// Read downloads the bytes stored under name.
func (s *GCSStore) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open blob %q: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read blob %q: %w", name, err)
	}

	return data, nil
}

// List returns the sorted names of every object under prefix.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gcs.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list blobs under %q: %w", prefix, err)
		}
		names = append(names, attrs.Name)
	}

	sort.Strings(names)
	return names, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ BlobStore = (*GCSStore)(nil)
