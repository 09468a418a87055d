package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/OFFIS-RIT/migrascope/pkg/loader"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/option"
)

// GCSLoader reads gs://bucket/object locations from Google Cloud Storage.
type GCSLoader struct {
	client *storage.Client

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func NewGCSLoaderWithClient(client *storage.Client) *GCSLoader {
	return &GCSLoader{
		client: client,
		cache:  make(map[string][]byte),
	}
}

// NewGCSLoader authenticates with a service account key file, or with
// application default credentials when credentialsFile is empty.
func NewGCSLoader(ctx context.Context, credentialsFile string) (*GCSLoader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return NewGCSLoaderWithClient(client), nil
}

func (l *GCSLoader) Close() error {
	return l.client.Close()
}

func (l *GCSLoader) Load(ctx context.Context, location string) ([]byte, error) {
	scheme, rest := loader.SplitLocation(location)
	if scheme != "gs" {
		return nil, fmt.Errorf("not a gs location: %q", location)
	}
	bucket, object, err := loader.SplitBucketKey(rest)
	if err != nil {
		return nil, err
	}

	l.cacheMu.RLock()
	if cached, ok := l.cache[location]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(location, func() (any, error) {
		r, err := l.client.Bucket(bucket).Object(object).NewReader(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		defer r.Close()

		byts, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", location, err)
		}

		l.cacheMu.Lock()
		l.cache[location] = byts
		l.cacheMu.Unlock()

		return byts, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
