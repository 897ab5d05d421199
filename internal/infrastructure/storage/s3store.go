package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/shared/config"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Presigner interface {
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4Request, error)
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4Request, error)
}

// S3Store keeps objects in a single S3 bucket. Uploads are encrypted at
// rest with SSE-S3 (AES256).
type S3Store struct {
	bucket    string
	client    s3API
	presigner s3Presigner
	logger    logger.Interface
}

// NewS3Client builds an S3 client from storage settings. A custom endpoint
// switches to path-style addressing for S3-compatible servers.
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Store wraps client for bucket.
func NewS3Store(client *s3.Client, bucket string, log logger.Interface) *S3Store {
	return &S3Store{
		bucket:    bucket,
		client:    client,
		presigner: presignAdapter{s3.NewPresignClient(client)},
		logger:    log,
	}
}

func (s *S3Store) PresignUpload(ctx context.Context, req objectstorage.UploadRequest) (*objectstorage.PresignedURL, error) {
	in := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(req.Key),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	}
	if req.ContentType != "" {
		in.ContentType = aws.String(req.ContentType)
	}
	if req.Size > 0 {
		in.ContentLength = aws.Int64(req.Size)
	}

	signed, err := s.presigner.PresignPutObject(ctx, in, s3.WithPresignExpires(req.TTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload for %s: %w", req.Key, err)
	}
	return signed.toPresigned(time.Now().UTC().Add(req.TTL)), nil
}

func (s *S3Store) PresignDownload(ctx context.Context, key string, fileName string, ttl time.Duration) (*objectstorage.PresignedURL, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if fileName != "" {
		in.ResponseContentDisposition = aws.String(ContentDisposition(fileName))
	}

	signed, err := s.presigner.PresignGetObject(ctx, in, s3.WithPresignExpires(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign download for %s: %w", key, err)
	}
	return signed.toPresigned(time.Now().UTC().Add(ttl)), nil
}

func (s *S3Store) Head(ctx context.Context, key string) (*objectstorage.ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, errors.NewNotFoundError("object not found")
		}
		return nil, fmt.Errorf("failed to head object %s: %w", key, err)
	}

	info := &objectstorage.ObjectInfo{
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		info.LastModified = out.LastModified.UTC()
	}
	return info, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	s.logger.Debugw("object deleted", "bucket", s.bucket, "key", key)
	return nil
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return stderrors.As(err, &notFound) || stderrors.As(err, &noSuchKey)
}

// v4Request is the subset of a presigned request the store hands out.
type v4Request struct {
	URL          string
	Method       string
	SignedHeader http.Header
}

func (r *v4Request) toPresigned(expiresAt time.Time) *objectstorage.PresignedURL {
	headers := make(map[string]string, len(r.SignedHeader))
	for k, v := range r.SignedHeader {
		canonical := http.CanonicalHeaderKey(k)
		if canonical == "Host" || len(v) == 0 {
			continue
		}
		headers[canonical] = v[0]
	}
	return &objectstorage.PresignedURL{
		URL:       r.URL,
		Method:    r.Method,
		Headers:   headers,
		ExpiresAt: expiresAt,
	}
}

type presignAdapter struct {
	client *s3.PresignClient
}

func (p presignAdapter) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4Request, error) {
	req, err := p.client.PresignPutObject(ctx, in, optFns...)
	if err != nil {
		return nil, err
	}
	return &v4Request{URL: req.URL, Method: req.Method, SignedHeader: req.SignedHeader}, nil
}

func (p presignAdapter) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4Request, error) {
	req, err := p.client.PresignGetObject(ctx, in, optFns...)
	if err != nil {
		return nil, err
	}
	return &v4Request{URL: req.URL, Method: req.Method, SignedHeader: req.SignedHeader}, nil
}
