package s3mirror

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client used by Mirror.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Mirror uploads images to an S3 bucket. It implements repository.ImageMirror.
type Mirror struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// New loads the default AWS configuration for region and returns a Mirror
// writing under prefix in bucket.
func New(ctx context.Context, region, bucket, prefix string) (*Mirror, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func NewWithClient(client PutObjectAPI, bucket, prefix string) *Mirror {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Mirror{client: client, bucket: bucket, prefix: prefix}
}

// Put uploads body under the mirror prefix.
func (m *Mirror) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	objectKey := m.prefix + strings.TrimLeft(key, "/")
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", objectKey, err)
	}
	return nil
}
