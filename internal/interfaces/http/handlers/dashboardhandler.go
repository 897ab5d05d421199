package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	identitydto "github.com/shadowiq/shadowiq/internal/application/identity/dto"
	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	projectUsecases "github.com/shadowiq/shadowiq/internal/application/project/usecases"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type dashboardUseCase interface {
	Execute(ctx context.Context, query projectUsecases.DashboardQuery) (*projectUsecases.DashboardResult, error)
}

type DashboardHandler struct {
	dashboardUseCase dashboardUseCase
	logger           logger.Interface
}

func NewDashboardHandler(dashboardUC dashboardUseCase, logger logger.Interface) *DashboardHandler {
	return &DashboardHandler{
		dashboardUseCase: dashboardUC,
		logger:           logger,
	}
}

type DashboardResponse struct {
	View       string                          `json:"view"`
	Projects   []*dto.ProjectResponse          `json:"projects"`
	Identities []*identitydto.IdentityResponse `json:"identities,omitempty"`
	Total      int64                           `json:"total"`
	Page       int                             `json:"page"`
	PageSize   int                             `json:"page_size"`
	TotalPages int                             `json:"total_pages"`
}

// GetDashboard lists the caller's projects. Staff may pass ?view= to see a
// lower role's listing.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	caller, err := callerFromContext(c, h.logger)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var view identity.Role
	if raw := c.Query("view"); raw != "" {
		view = identity.Role(raw)
		if !view.IsValid() {
			utils.ErrorResponseWithError(c, errors.NewValidationError("unknown dashboard view"))
			return
		}
	}

	p := utils.ParsePagination(c)
	result, err := h.dashboardUseCase.Execute(c.Request.Context(), projectUsecases.DashboardQuery{
		Viewer:   caller,
		View:     view,
		Status:   c.Query("status"),
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", DashboardResponse{
		View:       result.View,
		Projects:   result.Projects,
		Identities: result.Identities,
		Total:      result.Total,
		Page:       result.Pagination.Page,
		PageSize:   result.Pagination.PageSize,
		TotalPages: utils.TotalPages(result.Total, result.Pagination.PageSize),
	})
}
