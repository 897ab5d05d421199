package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/config"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestLocalStore(t *testing.T) (*LocalStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/", []byte("0123456789abcdef0123456789abcdef"), clock, logger.NewNopLogger())
	require.NoError(t, err)
	return store, clock
}

func sigOf(t *testing.T, raw string) (string, string) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	key, err := url.PathUnescape(strings.TrimPrefix(u.Path, LocalRoutePrefix))
	require.NoError(t, err)
	return key, u.Query().Get("sig")
}

func TestLocalStore_UploadRoundTrip(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()
	key := "projects/SIQ-ABC123/data/20260301120000_notes.txt"

	signed, err := store.PresignUpload(ctx, objectstorage.UploadRequest{Key: key, ContentType: "text/plain", Size: 64, TTL: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, "PUT", signed.Method)
	assert.True(t, strings.HasPrefix(signed.URL, "http://localhost:8080/files/local/projects/"))
	assert.Equal(t, "text/plain", signed.Headers["Content-Type"])

	gotKey, sig := sigOf(t, signed.URL)
	assert.Equal(t, key, gotKey)

	claims, err := store.Verify(sig, key, OpPut)
	require.NoError(t, err)

	n, err := store.Write(key, strings.NewReader("hello"), claims)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	info, err := store.Head(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 5, info.Size)
	assert.Equal(t, key, info.Key)
}

func TestLocalStore_VerifyRejects(t *testing.T) {
	store, clock := newTestLocalStore(t)
	ctx := context.Background()
	key := "projects/SIQ-ABC123/report/20260301120000_r.pdf"

	signed, err := store.PresignDownload(ctx, key, "r.pdf", time.Minute)
	require.NoError(t, err)
	_, sig := sigOf(t, signed.URL)

	t.Run("wrong op", func(t *testing.T) {
		_, err := store.Verify(sig, key, OpPut)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := store.Verify(sig, "projects/SIQ-OTHER1/report/x.pdf", OpGet)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := store.Verify(sig+"x", key, OpGet)
		assert.True(t, errors.IsForbiddenError(err))
	})

	t.Run("expired", func(t *testing.T) {
		clock.now = clock.now.Add(2 * time.Minute)
		_, err := store.Verify(sig, key, OpGet)
		assert.True(t, errors.IsTokenExpiredError(err))
	})
}

func TestLocalStore_WriteRejectsOversize(t *testing.T) {
	store, _ := newTestLocalStore(t)
	key := "projects/SIQ-ABC123/data/20260301120000_big.bin"

	_, err := store.Write(key, strings.NewReader("0123456789"), &LocalClaims{Key: key, Op: OpPut, MaxSize: 4})
	assert.True(t, errors.IsValidationError(err))

	_, err = store.Head(context.Background(), key)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, _ := newTestLocalStore(t)

	for _, key := range []string{"../etc/passwd", "/abs/path", ""} {
		_, err := store.Head(context.Background(), key)
		assert.True(t, errors.IsValidationError(err), key)
	}
}

func TestLocalStore_DeleteMissingIsNoop(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()
	key := "projects/SIQ-ABC123/data/f.txt"

	require.NoError(t, store.Delete(ctx, key))

	_, err := store.Write(key, strings.NewReader("x"), nil)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, key))

	_, err = os.Stat(filepath.Join(store.root, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}

func TestNewLocalStore_RequiresKey(t *testing.T) {
	_, err := NewLocalStore(t.TempDir(), "", nil, biztime.SystemClock(), logger.NewNopLogger())
	assert.Error(t, err)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"}, config.SecurityConfig{}, "", logger.NewNopLogger())
	assert.ErrorContains(t, err, "unsupported storage driver")
}
