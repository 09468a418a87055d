package s3

import (
	"context"
	"io"
	"io/fs"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects map[string]string
	calls   atomic.Int32
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls.Add(1)
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3LoaderLoadsAndCaches(t *testing.T) {
	bucket := &fakeBucket{objects: map[string]string{"ref/features.csv": "Feature Area,Feature\n"}}
	l := NewS3LoaderWithClient(bucket)

	for range 2 {
		got, err := l.Load(context.Background(), "s3://ref/features.csv")
		require.NoError(t, err)
		assert.Equal(t, "Feature Area,Feature\n", string(got))
	}
	assert.EqualValues(t, 1, bucket.calls.Load())
}

func TestS3LoaderErrors(t *testing.T) {
	l := NewS3LoaderWithClient(&fakeBucket{objects: map[string]string{}})

	_, err := l.Load(context.Background(), "s3://ref/missing.csv")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = l.Load(context.Background(), "gs://ref/features.csv")
	assert.Error(t, err)

	_, err = l.Load(context.Background(), "s3://only-bucket")
	assert.Error(t, err)
}
