package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/OFFIS-RIT/migrascope/pkg/loader"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"golang.org/x/sync/singleflight"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads s3://bucket/key locations. Content is cached per location
// and concurrent loads of the same object share one request.
type S3Loader struct {
	client objectGetter

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewS3LoaderWithClient reuses a preconfigured client, e.g. the one the
// service already uses for report artifacts.
func NewS3LoaderWithClient(client objectGetter) *S3Loader {
	return &S3Loader{
		client: client,
		cache:  make(map[string][]byte),
	}
}

// NewS3LoaderParams configures a client with static credentials. Endpoint
// may point at S3-compatible storage such as MinIO.
type NewS3LoaderParams struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

func NewS3Loader(ctx context.Context, params NewS3LoaderParams) (*S3Loader, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithBaseEndpoint(params.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return NewS3LoaderWithClient(client), nil
}

func (l *S3Loader) Load(ctx context.Context, location string) ([]byte, error) {
	scheme, rest := loader.SplitLocation(location)
	if scheme != "s3" {
		return nil, fmt.Errorf("not an s3 location: %q", location)
	}
	bucket, key, err := loader.SplitBucketKey(rest)
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
		out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var missing *types.NoSuchKey
			if errors.As(err, &missing) {
				return nil, fmt.Errorf("%w: %w", fs.ErrNotExist, err)
			}
			return nil, err
		}
		defer out.Body.Close()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, out.Body); err != nil {
			return nil, err
		}
		byts := buf.Bytes()

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
