package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// uploadURLTTL bounds how long an issued upload URL stays valid.
const uploadURLTTL = 15 * time.Minute

// presignAPI is the minimal S3 presign interface required by Client.
// *s3.PresignClient from aws-sdk-go-v2 satisfies this interface.
type presignAPI interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Client issues pre-signed PUT URLs for letter images. Uploads go straight
// from the caller to the bucket; this process never touches image bytes.
type Client struct {
	api    presignAPI
	bucket string
}

// New creates a Client for the given bucket.
func New(api presignAPI, bucket string) (*Client, error) {
	if api == nil {
		return nil, errors.New("objectstore: api must not be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("objectstore: bucket must not be empty")
	}
	return &Client{api: api, bucket: bucket}, nil
}

// PresignPutObject returns a URL that accepts one PUT of the given content
// type under key, valid for uploadURLTTL.
func (c *Client) PresignPutObject(ctx context.Context, key, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("objectstore: key is required")
	}
	out, err := c.api.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignOptions) {
		o.Expires = uploadURLTTL
	})
	if err != nil {
		return "", fmt.Errorf("objectstore: presign put %q: %w", key, err)
	}
	return out.URL, nil
}
