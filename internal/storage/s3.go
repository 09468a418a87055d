package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/OFFIS-RIT/migrascope/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const downloadLinkTTL = 15 * time.Minute

// NewS3Client configures a path-style client from AWS_REGION, AWS_ENDPOINT,
// AWS_ACCESS_KEY and AWS_SECRET_KEY.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(util.GetEnv("AWS_REGION")),
		config.WithBaseEndpoint(util.GetEnv("AWS_ENDPOINT")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			util.GetEnv("AWS_ACCESS_KEY"),
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

// ReportKey is the object key of one generated report.
func ReportKey(assessmentID, correlationID string) string {
	return path.Join("reports", assessmentID, correlationID+".json")
}

// Artifacts stores report documents in one bucket.
type Artifacts struct {
	client         *s3.Client
	bucket         string
	publicEndpoint string
}

func NewArtifacts(client *s3.Client, bucket string) *Artifacts {
	return &Artifacts{
		client:         client,
		bucket:         bucket,
		publicEndpoint: util.GetEnv("AWS_PUBLIC_ENDPOINT"),
	}
}

// PutReport uploads a JSON document and returns its s3:// location.
func (a *Artifacts) PutReport(ctx context.Context, key string, body []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to S3: %w", err)
	}
	return "s3://" + a.bucket + "/" + key, nil
}

// DownloadLink presigns a GET for an s3:// location or a plain key. When
// AWS_PUBLIC_ENDPOINT is set the link is signed for that host, including
// any path prefix it carries.
func (a *Artifacts) DownloadLink(ctx context.Context, location string) (string, error) {
	bucket, key := a.bucket, location
	if rest, ok := strings.CutPrefix(location, "s3://"); ok {
		b, k, found := strings.Cut(rest, "/")
		if !found || k == "" {
			return "", fmt.Errorf("invalid report location: %s", location)
		}
		bucket, key = b, k
	}

	client := a.client
	prefix := ""
	if a.publicEndpoint != "" {
		publicURL, err := url.Parse(a.publicEndpoint)
		if err != nil || publicURL.Scheme == "" || publicURL.Host == "" {
			return "", fmt.Errorf("invalid AWS_PUBLIC_ENDPOINT: %s", a.publicEndpoint)
		}
		prefix = strings.TrimSuffix(publicURL.Path, "/")
		client = s3.NewFromConfig(
			aws.Config{
				Region:      a.client.Options().Region,
				Credentials: a.client.Options().Credentials,
				HTTPClient:  a.client.Options().HTTPClient,
			},
			func(o *s3.Options) {
				o.BaseEndpoint = aws.String(publicURL.Scheme + "://" + publicURL.Host)
				o.UsePathStyle = true
			},
		)
	}

	out, err := s3.NewPresignClient(client).PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(downloadLinkTTL),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate download link: %w", err)
	}
	if prefix == "" {
		return out.URL, nil
	}

	signedURL, err := url.Parse(out.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse presigned url: %w", err)
	}
	signedURL.Path = prefix + signedURL.Path
	return signedURL.String(), nil
}
