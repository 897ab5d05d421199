package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// LocalRoutePrefix is where the HTTP layer serves local objects.
const LocalRoutePrefix = "/files/local/"

// Operations a local signed URL may grant.
const (
	OpPut = "put"
	OpGet = "get"
)

// LocalClaims are carried in the sig query parameter of a local URL.
type LocalClaims struct {
	Key         string `json:"key"`
	Op          string `json:"op"`
	ContentType string `json:"ct,omitempty"`
	MaxSize     int64  `json:"max,omitempty"`
	FileName    string `json:"fn,omitempty"`
	jwt.RegisteredClaims
}

// LocalStore keeps objects on disk and issues HS256-signed URLs that the
// service itself serves. Intended for development.
type LocalStore struct {
	root    string
	baseURL string
	secret  []byte
	clock   biztime.Clock
	logger  logger.Interface
}

func NewLocalStore(root, baseURL string, secret []byte, clock biztime.Clock, log logger.Interface) (*LocalStore, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("local storage requires a signing key")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	if clock == nil {
		clock = biztime.SystemClock()
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		clock:   clock,
		logger:  log,
	}, nil
}

func (s *LocalStore) PresignUpload(_ context.Context, req objectstorage.UploadRequest) (*objectstorage.PresignedURL, error) {
	claims := LocalClaims{Key: req.Key, Op: OpPut, ContentType: req.ContentType, MaxSize: req.Size}
	signed, expiresAt, err := s.sign(claims, req.TTL)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{}
	if req.ContentType != "" {
		headers["Content-Type"] = req.ContentType
	}
	return &objectstorage.PresignedURL{
		URL:       s.urlFor(req.Key, signed),
		Method:    "PUT",
		Headers:   headers,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *LocalStore) PresignDownload(_ context.Context, key string, fileName string, ttl time.Duration) (*objectstorage.PresignedURL, error) {
	signed, expiresAt, err := s.sign(LocalClaims{Key: key, Op: OpGet, FileName: fileName}, ttl)
	if err != nil {
		return nil, err
	}
	return &objectstorage.PresignedURL{
		URL:       s.urlFor(key, signed),
		Method:    "GET",
		Headers:   map[string]string{},
		ExpiresAt: expiresAt,
	}, nil
}

func (s *LocalStore) Head(_ context.Context, key string) (*objectstorage.ObjectInfo, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(p)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.NewNotFoundError("object not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return &objectstorage.ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(path.Ext(key)),
		LastModified: st.ModTime().UTC(),
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Verify checks a signed URL token for key and op.
func (s *LocalStore) Verify(token, key, op string) (*LocalClaims, error) {
	claims := &LocalClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewTokenExpiredError("link has expired")
		}
		return nil, errors.NewForbiddenError("invalid signature")
	}
	if claims.Key != key || claims.Op != op {
		return nil, errors.NewForbiddenError("signature does not match request")
	}
	return claims, nil
}

// Write stores the body for key, refusing more than claims.MaxSize bytes
// when a size was signed.
func (s *LocalStore) Write(key string, body io.Reader, claims *LocalClaims) (int64, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	reader := body
	if claims != nil && claims.MaxSize > 0 {
		reader = io.LimitReader(body, claims.MaxSize+1)
	}
	n, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	if claims != nil && claims.MaxSize > 0 && n > claims.MaxSize {
		return 0, errors.NewValidationError("body exceeds signed size")
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return 0, fmt.Errorf("failed to store object: %w", err)
	}
	s.logger.Debugw("local object stored", "key", key, "size", n)
	return n, nil
}

// Open returns the stored object for key.
func (s *LocalStore) Open(key string) (*os.File, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.NewNotFoundError("object not found")
	}
	return f, err
}

func (s *LocalStore) sign(claims LocalClaims, ttl time.Duration) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *LocalStore) urlFor(key, token string) string {
	return s.baseURL + LocalRoutePrefix + escapeKey(key) + "?sig=" + url.QueryEscape(token)
}

func (s *LocalStore) pathFor(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if key == "" || !filepath.IsLocal(rel) {
		return "", errors.NewValidationError("invalid object key")
	}
	return filepath.Join(s.root, rel), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// ContentDisposition returns an attachment header value for fileName.
func ContentDisposition(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}
