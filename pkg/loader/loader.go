package loader

import (
	"context"
	"fmt"
	"strings"
)

// BlobLoader fetches the raw bytes stored at a location. Implementations
// may read from disk, object storage or anything else addressable by URI.
type BlobLoader interface {
	Load(ctx context.Context, location string) ([]byte, error)
}

// BlobLoaderFunc adapts a function to BlobLoader.
type BlobLoaderFunc func(ctx context.Context, location string) ([]byte, error)

func (f BlobLoaderFunc) Load(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// Router dispatches a location to the loader registered for its scheme
// ("s3", "gs", ...). Locations without a scheme go to the fallback.
type Router struct {
	schemes  map[string]BlobLoader
	fallback BlobLoader
}

func NewRouter(fallback BlobLoader) *Router {
	return &Router{
		schemes:  make(map[string]BlobLoader),
		fallback: fallback,
	}
}

// Handle registers l for scheme. A nil loader removes the scheme.
func (r *Router) Handle(scheme string, l BlobLoader) {
	scheme = strings.ToLower(scheme)
	if l == nil {
		delete(r.schemes, scheme)
		return
	}
	r.schemes[scheme] = l
}

func (r *Router) Load(ctx context.Context, location string) ([]byte, error) {
	scheme, _ := SplitLocation(location)
	if scheme != "" && scheme != "file" {
		l, ok := r.schemes[scheme]
		if !ok {
			return nil, fmt.Errorf("no loader for scheme %q", scheme)
		}
		return l.Load(ctx, location)
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("no loader for %q", location)
	}
	return r.fallback.Load(ctx, location)
}

// SplitLocation separates "scheme://rest". Plain paths return an empty scheme.
func SplitLocation(location string) (scheme, rest string) {
	i := strings.Index(location, "://")
	if i <= 0 {
		return "", location
	}
	return strings.ToLower(location[:i]), location[i+3:]
}

// SplitBucketKey splits "bucket/key/parts" as found after the scheme.
func SplitBucketKey(rest string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("location %q must be bucket/key", rest)
	}
	return bucket, key, nil
}
