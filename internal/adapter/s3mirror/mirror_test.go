package s3mirror

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPutUsesPrefixAndContentType(t *testing.T) {
	fake := &fakeS3{}
	m := NewWithClient(fake, "catalog-assets", "images")

	err := m.Put(context.Background(), "kitchen-dining/red_mug.jpg", strings.NewReader("jpeg"), "image/jpeg")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if aws.ToString(fake.input.Bucket) != "catalog-assets" {
		t.Errorf("unexpected bucket %q", aws.ToString(fake.input.Bucket))
	}
	if aws.ToString(fake.input.Key) != "images/kitchen-dining/red_mug.jpg" {
		t.Errorf("unexpected key %q", aws.ToString(fake.input.Key))
	}
	if aws.ToString(fake.input.ContentType) != "image/jpeg" {
		t.Errorf("unexpected content type %q", aws.ToString(fake.input.ContentType))
	}
	if fake.body != "jpeg" {
		t.Errorf("unexpected body %q", fake.body)
	}
}

func TestPutWithoutPrefix(t *testing.T) {
	fake := &fakeS3{}
	if err := NewWithClient(fake, "b", "").Put(context.Background(), "/toys/ball.jpg", strings.NewReader(""), "image/jpeg"); err != nil {
		t.Fatal(err)
	}
	if aws.ToString(fake.input.Key) != "toys/ball.jpg" {
		t.Errorf("unexpected key %q", aws.ToString(fake.input.Key))
	}
}

func TestPutWrapsError(t *testing.T) {
	boom := errors.New("access denied")
	err := NewWithClient(&fakeS3{err: boom}, "b", "p/").Put(context.Background(), "k.jpg", strings.NewReader(""), "image/jpeg")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
