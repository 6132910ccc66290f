package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	putInput  *awss3.PutObjectInput
	delInput  *awss3.DeleteObjectInput
	headInput *awss3.HeadBucketInput
	err       error
}

func (f *fakeAPI) PutObject(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.putInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, params *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	f.delInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &awss3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) HeadBucket(_ context.Context, params *awss3.HeadBucketInput, _ ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error) {
	f.headInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &awss3.HeadBucketOutput{}, nil
}

func TestPutObject(t *testing.T) {
	api := &fakeAPI{}
	d := NewDriverWithClient(api, "pwalib-media")

	content := []byte("cover bytes")
	err := d.PutObject(context.Background(), "pwalib/covers/x.png", bytes.NewReader(content), int64(len(content)), "image/png")
	require.NoError(t, err)

	require.Equal(t, "pwalib-media", *api.putInput.Bucket)
	require.Equal(t, "pwalib/covers/x.png", *api.putInput.Key)
	require.Equal(t, int64(len(content)), *api.putInput.ContentLength)
	require.Equal(t, "image/png", *api.putInput.ContentType)

	body, err := io.ReadAll(api.putInput.Body)
	require.NoError(t, err)
	require.Equal(t, content, body)
}

func TestPutObjectOmitsEmptyContentType(t *testing.T) {
	api := &fakeAPI{}
	d := NewDriverWithClient(api, "pwalib-media")

	err := d.PutObject(context.Background(), "pwalib/books/x.pdf", bytes.NewReader(nil), 0, "")
	require.NoError(t, err)
	require.Nil(t, api.putInput.ContentType)
}

func TestPutObjectError(t *testing.T) {
	api := &fakeAPI{err: errors.New("access denied")}
	d := NewDriverWithClient(api, "pwalib-media")

	err := d.PutObject(context.Background(), "pwalib/books/x.pdf", bytes.NewReader(nil), 0, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "access denied")
	require.Contains(t, err.Error(), "pwalib/books/x.pdf")
}

func TestDeleteObject(t *testing.T) {
	api := &fakeAPI{}
	d := NewDriverWithClient(api, "pwalib-media")

	require.NoError(t, d.DeleteObject(context.Background(), "pwalib/covers/x.png"))
	require.Equal(t, "pwalib-media", *api.delInput.Bucket)
	require.Equal(t, "pwalib/covers/x.png", *api.delInput.Key)
}

func TestPing(t *testing.T) {
	api := &fakeAPI{}
	d := NewDriverWithClient(api, "pwalib-media")

	require.NoError(t, d.Ping(context.Background()))
	require.Equal(t, "pwalib-media", *api.headInput.Bucket)

	api.err = errors.New("no such bucket")
	require.Error(t, d.Ping(context.Background()))
}
