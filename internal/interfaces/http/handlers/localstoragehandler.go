package handlers

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/infrastructure/storage"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type localObjectStore interface {
	Verify(token, key, op string) (*storage.LocalClaims, error)
	Write(key string, body io.Reader, claims *storage.LocalClaims) (int64, error)
	Open(key string) (*os.File, error)
}

// LocalStorageHandler serves the signed URLs issued by the local storage
// driver. The sig query parameter is the only credential.
type LocalStorageHandler struct {
	store  localObjectStore
	logger logger.Interface
}

func NewLocalStorageHandler(store localObjectStore, logger logger.Interface) *LocalStorageHandler {
	return &LocalStorageHandler{
		store:  store,
		logger: logger,
	}
}

func (h *LocalStorageHandler) Put(c *gin.Context) {
	key := objectKey(c)
	claims, err := h.store.Verify(c.Query("sig"), key, storage.OpPut)
	if err != nil {
		h.logger.Warnw("rejected local upload", "key", key, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if claims.ContentType != "" && !sameMediaType(c.ContentType(), claims.ContentType) {
		utils.ErrorResponseWithError(c, errors.NewForbiddenError("content type does not match signature"))
		return
	}

	n, err := h.store.Write(key, c.Request.Body, claims)
	if err != nil {
		if !errors.IsAppError(err) {
			h.logger.Errorw("failed to store local object", "key", key, "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Header("ETag", `"`+key+`"`)
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"key": key, "size": n})
}

func (h *LocalStorageHandler) Get(c *gin.Context) {
	key := objectKey(c)
	claims, err := h.store.Verify(c.Query("sig"), key, storage.OpGet)
	if err != nil {
		h.logger.Warnw("rejected local download", "key", key, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	f, err := h.store.Open(key)
	if err != nil {
		if !errors.IsAppError(err) {
			h.logger.Errorw("failed to open local object", "key", key, "error", err)
		}
		utils.ErrorResponseWithError(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Errorw("failed to stat local object", "key", key, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if claims.FileName != "" {
		c.Header("Content-Disposition", storage.ContentDisposition(claims.FileName))
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func objectKey(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

func sameMediaType(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want))
}
