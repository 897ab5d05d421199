package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newSeededEnforcer(t *testing.T) (*Enforcer, *PolicySync) {
	t.Helper()
	db := setupTestDB(t)
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	sync := NewPolicySync(db, catalog, logger.NewNopLogger())
	require.NoError(t, sync.EnsureSeeded(context.Background()))

	enforcer, err := NewEnforcer(db, catalog, logger.NewNopLogger())
	require.NoError(t, err)
	return enforcer, sync
}

func TestEnforcer_Authorize(t *testing.T) {
	enforcer, _ := newSeededEnforcer(t)

	tests := []struct {
		role      identity.Role
		operation string
		want      bool
	}{
		{identity.RoleClient, access.OpProjectSubmit, true},
		{identity.RoleClient, access.OpDashboardView, true},
		{identity.RoleClient, access.OpAuditRead, false},
		{identity.RoleAnalyst, access.OpDashboardView, true},
		{identity.RoleAnalyst, access.OpProjectAssign, false},
		{identity.RoleAnalyst, access.OpPaymentRefund, false},
		{identity.RoleAdmin, access.OpProjectAssign, true},
		{identity.RoleAdmin, access.OpPaymentRelease, true},
		{identity.RoleAdmin, access.OpIdentityList, true},
		{identity.RoleAdmin, access.OpDashboardView, true},
		{identity.RoleAdmin, access.OpProjectSubmit, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String()+" "+tt.operation, func(t *testing.T) {
			got, err := enforcer.Authorize(tt.role, tt.operation)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnforcer_AuthorizeRejectsMalformedOperation(t *testing.T) {
	enforcer, _ := newSeededEnforcer(t)

	_, err := enforcer.Authorize(identity.RoleAdmin, "audit")
	assert.Error(t, err)
}

func TestEnforcer_RequiredRoles(t *testing.T) {
	enforcer, _ := newSeededEnforcer(t)

	assert.Equal(t, []string{"admin"}, enforcer.RequiredRoles(access.OpPaymentRefund))
	assert.Equal(t, []string{"client", "analyst"}, enforcer.RequiredRoles(access.OpDashboardView))
	assert.Empty(t, enforcer.RequiredRoles("unknown.op"))
}

func TestPolicySync_Idempotent(t *testing.T) {
	enforcer, sync := newSeededEnforcer(t)
	ctx := context.Background()

	first, err := sync.SyncToCasbin(ctx)
	require.NoError(t, err)
	second, err := sync.SyncToCasbin(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var stored int64
	require.NoError(t, sync.db.Table(casbinTable).Count(&stored).Error)
	assert.EqualValues(t, second, stored)

	require.NoError(t, enforcer.LoadPolicy())
	allowed, err := enforcer.Authorize(identity.RoleAdmin, access.OpAuditRead)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestParseCatalog_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown role", "grants:\n  superuser: [audit.read]\n"},
		{"malformed operation", "grants:\n  admin: [audit]\n"},
		{"self inheritance", "inherits:\n  admin: [admin]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestCatalog_RulesAreSorted(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	policies := catalog.Policies()
	require.NotEmpty(t, policies)
	assert.Equal(t, []string{"admin", "audit", "read"}, policies[0])
	assert.Equal(t, [][]string{{"admin", "analyst"}}, catalog.GroupingPolicies())
}
