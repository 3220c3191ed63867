// Package archive stores copies of exported reports in S3-compatible
// object storage (AWS S3 or MinIO).
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/deppfellow/erp-gateway/internal/config"
)

// Store writes report objects into a single bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a Store from the archive configuration.
//
// Static keys are used when both are configured; otherwise the default AWS
// credential chain applies (env, shared config, instance role).
func New(ctx context.Context, cfg config.ArchiveConfig) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Key builds the object key of one export: <prefix>/<yyyy-mm-dd>/<id>.csv
//
// id usually comes from a client supplied X-Request-ID, so anything other
// than letters, digits, '-' and '_' is replaced with '_'.
func Key(prefix string, day time.Time, id string) string {
	return path.Join(prefix, day.Format("2006-01-02"), unsafeKeyChars.ReplaceAllString(id, "_")+".csv")
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Put uploads body under <prefix>/<day>/<id>.csv and returns the key.
func (s *Store) Put(ctx context.Context, day time.Time, id string, contentType string, body []byte) (string, error) {
	key := Key(s.prefix, day, id)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return key, nil
}
