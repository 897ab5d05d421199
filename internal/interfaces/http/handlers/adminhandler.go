package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	identityUsecases "github.com/shadowiq/shadowiq/internal/application/identity/usecases"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

type listAuditEntriesUseCase interface {
	Execute(ctx context.Context, query auditlog.ListEntriesQuery) (*auditlog.ListEntriesResult, error)
}

type listIdentitiesUseCase interface {
	Execute(ctx context.Context, query identityUsecases.ListIdentitiesQuery) (*identityUsecases.ListIdentitiesResult, error)
}

// AdminHandler serves the admin-only audit and identity listings.
type AdminHandler struct {
	listAuditUseCase      listAuditEntriesUseCase
	listIdentitiesUseCase listIdentitiesUseCase
	logger                logger.Interface
}

func NewAdminHandler(
	listAuditUC listAuditEntriesUseCase,
	listIdentitiesUC listIdentitiesUseCase,
	logger logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		listAuditUseCase:      listAuditUC,
		listIdentitiesUseCase: listIdentitiesUC,
		logger:                logger,
	}
}

// ListAuditEntries supports ?project_id, ?identity_id, ?action and an
// RFC3339 ?since/?until window, newest first.
func (h *AdminHandler) ListAuditEntries(c *gin.Context) {
	since, err := parseTimeQuery(c, "since")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	until, err := parseTimeQuery(c, "until")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	p := utils.ParsePagination(c)
	result, err := h.listAuditUseCase.Execute(c.Request.Context(), auditlog.ListEntriesQuery{
		ProjectID:  c.Query("project_id"),
		IdentityID: c.Query("identity_id"),
		Action:     c.Query("action"),
		Since:      since,
		Until:      until,
		Page:       p.Page,
		PageSize:   p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Entries, result.Total, result.Pagination)
}

// ListIdentities lists identities, optionally narrowed by ?role.
func (h *AdminHandler) ListIdentities(c *gin.Context) {
	p := utils.ParsePagination(c)
	result, err := h.listIdentitiesUseCase.Execute(c.Request.Context(), identityUsecases.ListIdentitiesQuery{
		Role:     c.Query("role"),
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Identities, result.Total, result.Pagination)
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.NewValidationError(key + " must be an RFC3339 timestamp")
	}
	t = t.UTC()
	return &t, nil
}
