package objectstore

import (
	"context"
	"errors"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakePresign struct {
	out    *v4.PresignedHTTPRequest
	err    error
	lastIn *s3.PutObjectInput
}

func (f *fakePresign) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.lastIn = in
	return f.out, f.err
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "bucket")
	require.Error(t, err)
	_, err = New(&fakePresign{}, " ")
	require.Error(t, err)
}

func TestPresignPutObject_HappyPath(t *testing.T) {
	api := &fakePresign{out: &v4.PresignedHTTPRequest{URL: "https://bucket.example/presigned"}}
	c, err := New(api, "letter-images")
	require.NoError(t, err)

	url, err := c.PresignPutObject(context.Background(), "letters/corr-1/L1", "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "https://bucket.example/presigned", url)
	require.Equal(t, "letter-images", *api.lastIn.Bucket)
	require.Equal(t, "letters/corr-1/L1", *api.lastIn.Key)
	require.Equal(t, "image/jpeg", *api.lastIn.ContentType)
}

func TestPresignPutObject_EmptyKey(t *testing.T) {
	c, err := New(&fakePresign{}, "letter-images")
	require.NoError(t, err)
	_, err = c.PresignPutObject(context.Background(), "", "image/jpeg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "key is required")
}

func TestPresignPutObject_APIError(t *testing.T) {
	c, err := New(&fakePresign{err: errors.New("denied")}, "letter-images")
	require.NoError(t, err)
	_, err = c.PresignPutObject(context.Background(), "letters/corr-1/L1", "image/jpeg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "presign put")
}
