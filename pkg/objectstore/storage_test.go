package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	getErr  error
	puts    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func TestStorageClient_ObjectKey(t *testing.T) {
	client := NewWithAPI(newFakeS3(), "bucket", "course-feedback/")
	assert.Equal(t, "course-feedback/feedback_submissions.json", client.ObjectKey("feedback_submissions"))
	assert.Equal(t, "course-feedback/a.json", client.ObjectKey("/a"))
}

func TestStorageClient_DownloadMissing(t *testing.T) {
	client := NewWithAPI(newFakeS3(), "bucket", "")

	_, err := client.Download(context.Background(), "feedback_submissions")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestStorageClient_UploadThenDownload(t *testing.T) {
	api := newFakeS3()
	client := NewWithAPI(api, "bucket", "p/")
	ctx := context.Background()

	require.NoError(t, client.Upload(ctx, "k", []byte(`[{"name":"Al"}]`)))
	assert.Equal(t, 1, api.puts)
	assert.Contains(t, api.objects, "p/k.json")

	data, err := client.Download(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Al"}]`, string(data))
}

func TestStorageClient_DownloadCancelledContext(t *testing.T) {
	api := newFakeS3()
	api.getErr = errors.New("connection reset")
	client := NewWithAPI(api, "bucket", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Download(ctx, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
