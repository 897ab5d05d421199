package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/application/project/dto"
	projectUsecases "github.com/shadowiq/shadowiq/internal/application/project/usecases"
	apptestutil "github.com/shadowiq/shadowiq/internal/application/testutil"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/interfaces/http/handlers/testutil"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
	"github.com/shadowiq/shadowiq/internal/shared/utils"
)

func TestDashboardHandler_GetDashboard(t *testing.T) {
	admin := apptestutil.NewAdmin("root-admin")

	var got projectUsecases.DashboardQuery
	handler := NewDashboardHandler(&mockDashboardUC{executeFunc: func(_ context.Context, query projectUsecases.DashboardQuery) (*projectUsecases.DashboardResult, error) {
		got = query
		return &projectUsecases.DashboardResult{
			View:       string(identity.RoleAnalyst),
			Projects:   []*dto.ProjectResponse{{ID: "p-1"}, {ID: "p-2"}},
			Total:      45,
			Pagination: utils.NormalizePagination(1, 20),
		}, nil
	}}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/dashboard", nil)
	testutil.SetCaller(c, admin)
	testutil.SetQueryParams(c, map[string]string{"view": "analyst", "status": "in_progress"})
	handler.GetDashboard(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, identity.RoleAnalyst, got.View)
	assert.Equal(t, "in_progress", got.Status)
	assert.Same(t, admin, got.Viewer)
	assert.Contains(t, w.Body.String(), `"total_pages":3`)
}

func TestDashboardHandler_UnknownView(t *testing.T) {
	handler := NewDashboardHandler(nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/dashboard", nil)
	testutil.SetCaller(c, apptestutil.NewClient("quiet-otter"))
	testutil.SetQueryParams(c, map[string]string{"view": "superuser"})
	handler.GetDashboard(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
