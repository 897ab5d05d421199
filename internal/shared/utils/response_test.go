package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/shared/errors"
)

type bindRequest struct {
	Alias string `json:"alias" binding:"required,min=3"`
}

func renderError(t *testing.T, err error) (int, APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponseWithError(c, err)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestErrorResponseWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"forbidden", errors.NewForbiddenError("no"), http.StatusForbidden, "forbidden"},
		{"not found wrapped", fmt.Errorf("load: %w", errors.NewNotFoundError("project not found")), http.StatusNotFound, "not_found"},
		{"token expired", errors.NewTokenExpiredError("link expired"), http.StatusGone, "token_expired"},
		{"token used", errors.NewTokenAlreadyUsedError("used"), http.StatusConflict, "token_already_used"},
		{"upstream", errors.NewUpstreamError("stripe", fmt.Errorf("timeout")), http.StatusServiceUnavailable, "upstream_failure"},
		{"plain error hides details", fmt.Errorf("sql: connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := renderError(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantType, resp.Error.Type)
			assert.NotContains(t, resp.Error.Message, "connection refused")
		})
	}
}

func TestErrorResponseWithError_UpstreamIsRetryable(t *testing.T) {
	_, resp := renderError(t, errors.NewUpstreamError("s3", nil))
	require.NotNil(t, resp.Error)
	assert.True(t, resp.Error.Retryable)
}

func TestTranslateBindError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		body     string
		wantType errors.ErrorType
	}{
		{"missing field", `{}`, errors.ErrorTypeValidation},
		{"too short", `{"alias":"ab"}`, errors.ErrorTypeValidation},
		{"malformed json", `{"alias":`, errors.ErrorTypeBadRequest},
		{"wrong type", `{"alias":5}`, errors.ErrorTypeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/auth/magic-link", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req bindRequest
			err := c.ShouldBindJSON(&req)
			require.Error(t, err)

			appErr := errors.GetAppError(TranslateBindError(err))
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}
