package storage

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type mockS3 struct {
	headFunc   func(in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
	deleteFunc func(in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return m.headFunc(in)
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return m.deleteFunc(in)
}

type mockPresigner struct {
	put *s3.PutObjectInput
	get *s3.GetObjectInput
}

func (m *mockPresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4Request, error) {
	m.put = in
	return &v4Request{
		URL:    "https://bucket.s3.amazonaws.com/" + aws.ToString(in.Key) + "?X-Amz-Signature=abc",
		Method: http.MethodPut,
		SignedHeader: http.Header{
			"host":                         {"bucket.s3.amazonaws.com"},
			"x-amz-server-side-encryption": {"AES256"},
		},
	}, nil
}

func (m *mockPresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4Request, error) {
	m.get = in
	return &v4Request{URL: "https://bucket.s3.amazonaws.com/" + aws.ToString(in.Key), Method: http.MethodGet}, nil
}

func newTestS3Store(client s3API, presigner s3Presigner) *S3Store {
	return &S3Store{bucket: "siq-files", client: client, presigner: presigner, logger: logger.NewNopLogger()}
}

func TestS3Store_PresignUploadUsesSSE(t *testing.T) {
	presigner := &mockPresigner{}
	store := newTestS3Store(&mockS3{}, presigner)

	signed, err := store.PresignUpload(context.Background(), objectstorage.UploadRequest{
		Key: "projects/SIQ-ABC123/data/x.csv", ContentType: "text/csv", Size: 1024, TTL: time.Hour,
	})
	require.NoError(t, err)

	require.NotNil(t, presigner.put)
	assert.Equal(t, types.ServerSideEncryptionAes256, presigner.put.ServerSideEncryption)
	assert.Equal(t, "siq-files", aws.ToString(presigner.put.Bucket))
	assert.EqualValues(t, 1024, aws.ToInt64(presigner.put.ContentLength))
	assert.Equal(t, http.MethodPut, signed.Method)
	assert.Equal(t, "AES256", signed.Headers["X-Amz-Server-Side-Encryption"])
	assert.NotContains(t, signed.Headers, "Host")
	assert.WithinDuration(t, time.Now().Add(time.Hour), signed.ExpiresAt, time.Minute)
}

func TestS3Store_PresignDownloadSetsDisposition(t *testing.T) {
	presigner := &mockPresigner{}
	store := newTestS3Store(&mockS3{}, presigner)

	_, err := store.PresignDownload(context.Background(), "projects/SIQ-ABC123/report/r.pdf", "final report.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, `attachment; filename="final report.pdf"`, aws.ToString(presigner.get.ResponseContentDisposition))
}

func TestS3Store_Head(t *testing.T) {
	modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		out      *s3.HeadObjectOutput
		err      error
		wantErr  func(error) bool
		wantSize int64
	}{
		{
			name:     "found",
			out:      &s3.HeadObjectOutput{ContentLength: aws.Int64(42), ContentType: aws.String("text/csv"), LastModified: &modified},
			wantSize: 42,
		},
		{name: "not found", err: &types.NotFound{}, wantErr: errors.IsNotFoundError},
		{name: "no such key", err: &types.NoSuchKey{}, wantErr: errors.IsNotFoundError},
		{name: "other", err: stderrors.New("connection reset"), wantErr: func(err error) bool { return err != nil && !errors.IsAppError(err) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestS3Store(&mockS3{headFunc: func(*s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
				return tt.out, tt.err
			}}, &mockPresigner{})

			info, err := store.Head(context.Background(), "k")
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, info.Size)
			assert.Equal(t, modified, info.LastModified)
		})
	}
}

func TestS3Store_Delete(t *testing.T) {
	var got string
	store := newTestS3Store(&mockS3{deleteFunc: func(in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		got = aws.ToString(in.Key)
		return &s3.DeleteObjectOutput{}, nil
	}}, &mockPresigner{})

	require.NoError(t, store.Delete(context.Background(), "projects/SIQ-ABC123/data/x.csv"))
	assert.Equal(t, "projects/SIQ-ABC123/data/x.csv", got)
}
