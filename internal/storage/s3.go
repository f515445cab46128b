package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectStore is the subset of the S3 API storage uses
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Location struct {
	bucket string
	key    string
}

func (l s3Location) String() string {
	return "s3://" + l.bucket + "/" + l.key
}

// parseS3 splits an s3://bucket/key URL. It reports false for anything else,
// including URLs without a key.
func parseS3(location string) (s3Location, bool) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return s3Location{}, false
	}
	bucket, key, ok := strings.Cut(rest, "/")
	key = strings.TrimPrefix(key, "/")
	if !ok || bucket == "" || key == "" {
		return s3Location{}, false
	}
	return s3Location{bucket: bucket, key: key}, true
}

func defaultObjectStore(ctx context.Context) (ObjectStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func getObject(ctx context.Context, client ObjectStore, loc s3Location) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.bucket),
		Key:    aws.String(loc.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%s: %w", loc, ErrMissingInput)
		}
		return nil, fmt.Errorf("failed to download %s: %w", loc, err)
	}
	defer out.Body.Close() // nolint:errcheck

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", loc, err)
	}
	return data, nil
}

func putObject(ctx context.Context, client ObjectStore, loc s3Location, data []byte, contentType string) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.bucket),
		Key:         aws.String(loc.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", loc, err)
	}
	return nil
}
