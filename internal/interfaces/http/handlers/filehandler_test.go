package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filesUsecases "github.com/shadowiq/shadowiq/internal/application/files/usecases"
	apptestutil "github.com/shadowiq/shadowiq/internal/application/testutil"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers/testutil"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

func TestFileHandler_RequestDeliverableUploadURL(t *testing.T) {
	analyst := apptestutil.NewAnalyst("steady-heron")
	proj := apptestutil.NewProjectFixture(apptestutil.NewClient("quiet-otter").ID(), apptestutil.WithAnalyst(analyst.ID()))

	var got filesUsecases.RequestUploadURLCommand
	handler := NewFileHandler(FileUseCases{
		RequestUploadURL: &mockRequestUploadURLUC{executeFunc: func(_ context.Context, cmd filesUsecases.RequestUploadURLCommand) (*filesUsecases.PresignedTransfer, error) {
			got = cmd
			return &filesUsecases.PresignedTransfer{
				Key:       "projects/" + proj.ID() + "/deliverables/report.pdf",
				URL:       "https://storage.example/upload",
				Method:    http.MethodPut,
				ExpiresAt: apptestutil.BaseTime.Add(15 * time.Minute),
			}, nil
		}},
	}, logger.NewNopLogger())

	body := UploadURLRequest{Type: "report", FileName: "report.pdf", ContentType: "application/pdf", Size: 2048}
	c, w := testutil.NewTestContext(http.MethodPost, "/projects/"+proj.Code()+"/deliverables/upload-url", body)
	testutil.SetCaller(c, analyst)
	testutil.SetProject(c, proj)
	handler.RequestDeliverableUploadURL(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, got.Deliverable)
	assert.Equal(t, analyst.ID(), got.ActorID)
	assert.Equal(t, int64(2048), got.Size)
	assert.Contains(t, w.Body.String(), "https://storage.example/upload")
}

func TestFileHandler_RequestUploadURL_ZeroSize(t *testing.T) {
	client := apptestutil.NewClient("quiet-otter")
	proj := apptestutil.NewProjectFixture(client.ID())
	handler := NewFileHandler(FileUseCases{}, logger.NewNopLogger())

	body := map[string]any{"type": "dataset", "file_name": "data.csv", "content_type": "text/csv", "size": 0}
	c, w := testutil.NewTestContext(http.MethodPost, "/projects/"+proj.Code()+"/files/upload-url", body)
	testutil.SetCaller(c, client)
	testutil.SetProject(c, proj)
	handler.RequestFileUploadURL(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileHandler_IssueDownloadToken(t *testing.T) {
	client := apptestutil.NewClient("quiet-otter")
	proj := apptestutil.NewProjectFixture(client.ID())
	oneTime := false

	tests := []struct {
		name        string
		body        any
		wantOneTime *bool
		wantTTL     time.Duration
	}{
		{"no body uses defaults", nil, nil, 0},
		{"explicit options", IssueTokenRequest{OneTime: &oneTime, TTLSeconds: 3600}, &oneTime, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got filesUsecases.IssueDownloadTokenCommand
			handler := NewFileHandler(FileUseCases{
				IssueToken: &mockIssueTokenUC{executeFunc: func(_ context.Context, cmd filesUsecases.IssueDownloadTokenCommand) (*filesUsecases.IssueDownloadTokenResult, error) {
					got = cmd
					return &filesUsecases.IssueDownloadTokenResult{Token: "tok", Path: "/downloads/tok", OneTime: true}, nil
				}},
			}, logger.NewNopLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/projects/"+proj.Code()+"/deliverables/d-1/tokens", tt.body)
			testutil.SetCaller(c, client)
			testutil.SetProject(c, proj)
			testutil.SetURLParam(c, "deliverableID", "d-1")
			handler.IssueDownloadToken(c)

			require.Equal(t, http.StatusCreated, w.Code)
			assert.Equal(t, "d-1", got.DeliverableID)
			assert.Equal(t, tt.wantOneTime, got.OneTime)
			assert.Equal(t, tt.wantTTL, got.TTL)
		})
	}
}

func TestFileHandler_RedeemDownloadToken(t *testing.T) {
	tests := []struct {
		name         string
		ucErr        error
		wantStatus   int
		wantLocation string
	}{
		{"valid token redirects", nil, http.StatusFound, "https://storage.example/report.pdf?sig=x"},
		{"expired token", errors.NewTokenExpiredError("download token has expired"), http.StatusGone, ""},
		{"already used token", errors.NewTokenAlreadyUsedError("download token has already been used"), http.StatusConflict, ""},
		{"unknown token", errors.NewNotFoundError("download token"), http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewFileHandler(FileUseCases{
				RedeemToken: &mockRedeemTokenUC{executeFunc: func(_ context.Context, cmd filesUsecases.RedeemDownloadTokenCommand) (*filesUsecases.PresignedTransfer, error) {
					assert.Equal(t, "tok-123", cmd.Token)
					if tt.ucErr != nil {
						return nil, tt.ucErr
					}
					return &filesUsecases.PresignedTransfer{URL: tt.wantLocation, Method: http.MethodGet}, nil
				}},
			}, logger.NewNopLogger())

			c, w := testutil.NewTestContext(http.MethodGet, "/downloads/tok-123", nil)
			testutil.SetURLParam(c, "token", "tok-123")
			handler.RedeemDownloadToken(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
				assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			}
		})
	}
}
