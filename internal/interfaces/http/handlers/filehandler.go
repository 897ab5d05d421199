package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	filesUsecases "github.com/shadowiq/shadowiq/internal/application/files/usecases"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type requestUploadURLUseCase interface {
	Execute(ctx context.Context, cmd filesUsecases.RequestUploadURLCommand) (*filesUsecases.PresignedTransfer, error)
}

type completeFileUploadUseCase interface {
	Execute(ctx context.Context, cmd filesUsecases.CompleteUploadCommand) (*dto.FileResponse, error)
}

type completeDeliverableUploadUseCase interface {
	Execute(ctx context.Context, cmd filesUsecases.CompleteUploadCommand) (*dto.DeliverableResponse, error)
}

type downloadFileUseCase interface {
	Execute(ctx context.Context, query filesUsecases.DownloadFileQuery) (*filesUsecases.PresignedTransfer, error)
}

type issueDownloadTokenUseCase interface {
	Execute(ctx context.Context, cmd filesUsecases.IssueDownloadTokenCommand) (*filesUsecases.IssueDownloadTokenResult, error)
}

type redeemDownloadTokenUseCase interface {
	Execute(ctx context.Context, cmd filesUsecases.RedeemDownloadTokenCommand) (*filesUsecases.PresignedTransfer, error)
}

// FileUseCases groups the use cases behind FileHandler.
type FileUseCases struct {
	RequestUploadURL    requestUploadURLUseCase
	CompleteFile        completeFileUploadUseCase
	CompleteDeliverable completeDeliverableUploadUseCase
	DownloadFile        downloadFileUseCase
	IssueToken          issueDownloadTokenUseCase
	RedeemToken         redeemDownloadTokenUseCase
}

// FileHandler serves client files, analyst deliverables and download tokens.
type FileHandler struct {
	ucs    FileUseCases
	logger logger.Interface
}

func NewFileHandler(ucs FileUseCases, logger logger.Interface) *FileHandler {
	return &FileHandler{
		ucs:    ucs,
		logger: logger,
	}
}

type UploadURLRequest struct {
	Type        string `json:"type" binding:"required"`
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=255"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

type CompleteUploadRequest struct {
	Type     string `json:"type" binding:"required"`
	Key      string `json:"key" binding:"required,max=1024"`
	FileName string `json:"file_name" binding:"required,max=255"`
	Title    string `json:"title" binding:"max=255"`
}

type IssueTokenRequest struct {
	OneTime    *bool `json:"one_time"`
	TTLSeconds int   `json:"ttl_seconds" binding:"omitempty,gt=0"`
}

func (h *FileHandler) RequestFileUploadURL(c *gin.Context) {
	h.requestUploadURL(c, false)
}

func (h *FileHandler) RequestDeliverableUploadURL(c *gin.Context) {
	h.requestUploadURL(c, true)
}

func (h *FileHandler) requestUploadURL(c *gin.Context, deliverable bool) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid upload url request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.RequestUploadURL.Execute(c.Request.Context(), filesUsecases.RequestUploadURLCommand{
		ActorID:     caller.ID(),
		Project:     proj,
		Deliverable: deliverable,
		Type:        req.Type,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// CompleteFileUpload records a client upload once the object is in storage.
func (h *FileHandler) CompleteFileUpload(c *gin.Context) {
	caller, proj, req, ok := h.bindCompleteUpload(c)
	if !ok {
		return
	}

	result, err := h.ucs.CompleteFile.Execute(c.Request.Context(), filesUsecases.CompleteUploadCommand{
		ActorID:  caller,
		Project:  proj,
		Type:     req.Type,
		Key:      req.Key,
		FileName: req.FileName,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "file uploaded")
}

// CompleteDeliverableUpload records an analyst deliverable.
func (h *FileHandler) CompleteDeliverableUpload(c *gin.Context) {
	caller, proj, req, ok := h.bindCompleteUpload(c)
	if !ok {
		return
	}

	result, err := h.ucs.CompleteDeliverable.Execute(c.Request.Context(), filesUsecases.CompleteUploadCommand{
		ActorID:  caller,
		Project:  proj,
		Type:     req.Type,
		Key:      req.Key,
		FileName: req.FileName,
		Title:    req.Title,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "deliverable uploaded")
}

func (h *FileHandler) bindCompleteUpload(c *gin.Context) (string, *project.Project, CompleteUploadRequest, bool) {
	var req CompleteUploadRequest
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return "", nil, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid complete upload request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return "", nil, req, false
	}
	return caller.ID(), proj, req, true
}

// DownloadFile returns a short-lived presigned URL for a client file.
func (h *FileHandler) DownloadFile(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.DownloadFile.Execute(c.Request.Context(), filesUsecases.DownloadFileQuery{
		ActorID: caller.ID(),
		Project: proj,
		FileID:  c.Param("fileID"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// IssueDownloadToken creates a shareable download link for a deliverable.
func (h *FileHandler) IssueDownloadToken(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req IssueTokenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warnw("invalid issue token request", "project_id", proj.ID(), "error", err)
			utils.ErrorResponseWithError(c, err)
			return
		}
	}

	result, err := h.ucs.IssueToken.Execute(c.Request.Context(), filesUsecases.IssueDownloadTokenCommand{
		ActorID:       caller.ID(),
		Project:       proj,
		DeliverableID: c.Param("deliverableID"),
		OneTime:       req.OneTime,
		TTL:           time.Duration(req.TTLSeconds) * time.Second,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "download token issued")
}

// RedeemDownloadToken needs no session: the token is the credential. A
// successful redemption redirects to the presigned URL.
func (h *FileHandler) RedeemDownloadToken(c *gin.Context) {
	result, err := h.ucs.RedeemToken.Execute(c.Request.Context(), filesUsecases.RedeemDownloadTokenCommand{
		Token: c.Param("token"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, result.URL)
}
