package usecases

import (
	"context"
	"time"

	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const (
	DefaultMaxUploadSize  int64 = 100 << 20
	DefaultUploadURLTTL         = time.Hour
	DefaultDownloadURLTTL       = 15 * time.Minute
)

// Options bounds uploads and the lifetime of presigned URLs.
type Options struct {
	MaxUploadSize       int64
	UploadURLTTL        time.Duration
	DownloadURLTTL      time.Duration
	CollaboratorTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxUploadSize <= 0 {
		o.MaxUploadSize = DefaultMaxUploadSize
	}
	if o.UploadURLTTL <= 0 {
		o.UploadURLTTL = DefaultUploadURLTTL
	}
	if o.DownloadURLTTL <= 0 {
		o.DownloadURLTTL = DefaultDownloadURLTTL
	}
	if o.CollaboratorTimeout <= 0 {
		o.CollaboratorTimeout = 10 * time.Second
	}
	return o
}

// TokenGenerator issues download token values and their at-rest hash.
type TokenGenerator interface {
	Generate() (plain string, hash string, err error)
	Hash(plain string) string
}

// PresignedTransfer is what a client needs to move bytes to or from storage.
type PresignedTransfer struct {
	Key       string            `json:"key,omitempty"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func callWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// upstream logs a collaborator failure and wraps it for the caller.
func upstream(log logger.Interface, collaborator string, err error, keyvals ...any) error {
	log.Errorw("collaborator call failed", append(keyvals, "collaborator", collaborator, "error", err)...)
	return errors.NewUpstreamError(collaborator, err)
}

func finish(log logger.Interface, err error, msg string, keyvals ...any) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	log.Errorw(msg, append(keyvals, "error", err)...)
	return errors.NewInternalError(msg)
}
