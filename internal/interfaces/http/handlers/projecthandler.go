package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	projectUsecases "github.com/shadowiq/shadowiq/internal/application/project/usecases"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

// ProjectUseCases groups the use cases behind ProjectHandler.
type ProjectUseCases struct {
	Submit         submitProjectUseCase
	Get            getProjectUseCase
	AssignAnalyst  assignAnalystUseCase
	ChangeStatus   changeStatusUseCase
	Reject         rejectProjectUseCase
	FileDispute    fileDisputeUseCase
	ResolveDispute resolveDisputeUseCase
	SendMessage    sendMessageUseCase
	ListMessages   listMessagesUseCase
}

// ProjectHandler serves project routes. Every route except Submit runs
// behind a project guard that has already loaded the project.
type ProjectHandler struct {
	ucs    ProjectUseCases
	logger logger.Interface
}

func NewProjectHandler(ucs ProjectUseCases, logger logger.Interface) *ProjectHandler {
	return &ProjectHandler{
		ucs:    ucs,
		logger: logger,
	}
}

type SubmitProjectRequest struct {
	Title               string     `json:"title" binding:"required,max=200"`
	Description         string     `json:"description" binding:"required,max=10000"`
	Stage               string     `json:"stage" binding:"required"`
	SupportType         string     `json:"support_type" binding:"required"`
	ResearchArea        string     `json:"research_area" binding:"required,max=100"`
	SampleSize          *string    `json:"sample_size" binding:"omitempty,max=100"`
	PreferredMethods    *string    `json:"preferred_methods" binding:"omitempty,max=1000"`
	Deadline            *time.Time `json:"deadline"`
	BudgetRange         *string    `json:"budget_range" binding:"omitempty,max=50"`
	ConfirmsLawfulUse   bool       `json:"confirms_lawful_use"`
	ConfirmsDataRights  bool       `json:"confirms_data_rights"`
	IRBApprovalProvided bool       `json:"irb_approval_provided"`
}

type AssignAnalystRequest struct {
	AnalystID    string `json:"analyst_id"`
	AnalystAlias string `json:"analyst_alias"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=1000"`
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required,max=2000"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

// Submit creates a project owned by the calling client.
func (h *ProjectHandler) Submit(c *gin.Context) {
	caller, err := callerFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SubmitProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid submit project request", "identity_id", caller.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.Submit.Execute(c.Request.Context(), projectUsecases.SubmitProjectCommand{
		ClientID:            caller.ID(),
		Title:               req.Title,
		Description:         req.Description,
		Stage:               req.Stage,
		SupportType:         req.SupportType,
		ResearchArea:        req.ResearchArea,
		SampleSize:          req.SampleSize,
		PreferredMethods:    req.PreferredMethods,
		Deadline:            req.Deadline,
		BudgetRange:         req.BudgetRange,
		ConfirmsLawfulUse:   req.ConfirmsLawfulUse,
		ConfirmsDataRights:  req.ConfirmsDataRights,
		IRBApprovalProvided: req.IRBApprovalProvided,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "project submitted")
}

// Get returns a project with its files, deliverables and participants.
func (h *ProjectHandler) Get(c *gin.Context) {
	proj, err := projectFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.Get.Execute(c.Request.Context(), projectUsecases.GetProjectQuery{Project: proj})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *ProjectHandler) AssignAnalyst(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req AssignAnalystRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid assign analyst request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.AssignAnalyst.Execute(c.Request.Context(), projectUsecases.AssignAnalystCommand{
		ActorID:      caller.ID(),
		ProjectID:    proj.ID(),
		AnalystID:    req.AnalystID,
		AnalystAlias: req.AnalystAlias,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "analyst assigned", result)
}

func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid change status request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.ChangeStatus.Execute(c.Request.Context(), projectUsecases.ChangeStatusCommand{
		ActorID:   caller.ID(),
		ProjectID: proj.ID(),
		Status:    req.Status,
		Note:      req.Note,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "status updated", result)
}

// Reject rejects a project, refunding a completed payment first.
func (h *ProjectHandler) Reject(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid reject request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.Reject.Execute(c.Request.Context(), projectUsecases.RejectProjectCommand{
		ActorID:   caller.ID(),
		ProjectID: proj.ID(),
		Reason:    req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "project rejected", result)
}

func (h *ProjectHandler) FileDispute(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid dispute request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.FileDispute.Execute(c.Request.Context(), projectUsecases.FileDisputeCommand{
		ActorID:   caller.ID(),
		ProjectID: proj.ID(),
		Reason:    req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "dispute filed", result)
}

func (h *ProjectHandler) ResolveDispute(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid resolve dispute request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.ResolveDispute.Execute(c.Request.Context(), projectUsecases.ResolveDisputeCommand{
		ActorID:    caller.ID(),
		ProjectID:  proj.ID(),
		Resolution: req.Resolution,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "dispute resolved", result)
}

// ListMessages returns the project thread and marks messages from others
// as read for the caller.
func (h *ProjectHandler) ListMessages(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.ListMessages.Execute(c.Request.Context(), projectUsecases.ListMessagesQuery{
		ReaderID:  caller.ID(),
		ProjectID: proj.ID(),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *ProjectHandler) SendMessage(c *gin.Context) {
	caller, proj, err := callerAndProject(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid message request", "project_id", proj.ID(), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.ucs.SendMessage.Execute(c.Request.Context(), projectUsecases.SendMessageCommand{
		SenderID:  caller.ID(),
		ProjectID: proj.ID(),
		Content:   req.Content,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, result, "message sent")
}
