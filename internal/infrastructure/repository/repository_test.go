package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shadowiq/shadowiq/internal/application/testutil"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/downloadtoken"
	"github.com/shadowiq/shadowiq/internal/domain/identity"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/infrastructure/persistence/models"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	apperrors "github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	// Every connection to ":memory:" is a separate database.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.IdentityModel{},
		&models.ProjectModel{},
		&models.ProjectFileModel{},
		&models.DeliverableModel{},
		&models.MessageModel{},
		&models.AuditLogModel{},
		&models.DownloadTokenModel{},
	))
	return gdb
}

func TestIdentityRepository_CreateAndLookup(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewIdentityRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()

	email := "Quiet.Owl@example.org"
	owl, err := identity.NewIdentity(id.NewUUID(), "QuietOwl", &email, testutil.BaseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, owl))

	t.Run("by alias is case insensitive", func(t *testing.T) {
		found, err := repo.GetByAlias(ctx, "quietowl")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, owl.ID(), found.ID())
		assert.Equal(t, "QuietOwl", found.Alias())
		require.NotNil(t, found.Email())
		assert.Equal(t, "quiet.owl@example.org", *found.Email())
	})

	t.Run("duplicate alias is conflict", func(t *testing.T) {
		dup, err := identity.NewIdentity(id.NewUUID(), "QUIETOWL", nil, testutil.BaseTime)
		require.NoError(t, err)
		err = repo.Create(ctx, dup)
		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("missing rows are nil without error", func(t *testing.T) {
		found, err := repo.GetByID(ctx, id.NewUUID())
		assert.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.GetByCredentialHash(ctx, "nope")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestIdentityRepository_ConsumeCredential(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewIdentityRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()
	now := testutil.BaseTime

	who := testutil.NewClient("LinkHolder")
	require.NoError(t, repo.Create(ctx, who))
	require.NoError(t, who.IssueCredential("hash-1", now.Add(24*time.Hour)))
	require.NoError(t, repo.SaveCredential(ctx, who))

	t.Run("wrong hash loses", func(t *testing.T) {
		won, err := repo.ConsumeCredential(ctx, who.ID(), "hash-2", now)
		require.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("expired credential is not consumed", func(t *testing.T) {
		won, err := repo.ConsumeCredential(ctx, who.ID(), "hash-1", now.Add(25*time.Hour))
		require.NoError(t, err)
		assert.False(t, won)

		stored, err := repo.GetByCredentialHash(ctx, "hash-1")
		require.NoError(t, err)
		require.NotNil(t, stored)
	})

	t.Run("first consume wins and second loses", func(t *testing.T) {
		won, err := repo.ConsumeCredential(ctx, who.ID(), "hash-1", now.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, won)

		won, err = repo.ConsumeCredential(ctx, who.ID(), "hash-1", now.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, won)

		stored, err := repo.GetByID(ctx, who.ID())
		require.NoError(t, err)
		assert.False(t, stored.HasCredential())
		require.NotNil(t, stored.LastLoginAt())
	})
}

func TestIdentityRepository_ListByRole(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewIdentityRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()

	both := testutil.NewIdentityFixture("BothFlags", true, true)
	for _, i := range []*identity.Identity{
		testutil.NewClient("ClientOne"),
		testutil.NewClient("ClientTwo"),
		testutil.NewAnalyst("AnalystOne"),
		both,
	} {
		require.NoError(t, repo.Create(ctx, i))
	}

	tests := []struct {
		role identity.Role
		want int64
	}{
		{identity.RoleClient, 2},
		{identity.RoleAnalyst, 1},
		{identity.RoleAdmin, 1},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			role := tt.role
			items, total, err := repo.List(ctx, identity.ListFilter{Role: &role, Page: 1, PageSize: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
			assert.Len(t, items, int(tt.want))
		})
	}

	t.Run("roles update", func(t *testing.T) {
		both.SetRoles(false, true)
		require.NoError(t, repo.UpdateRoles(ctx, both))
		stored, err := repo.GetByID(ctx, both.ID())
		require.NoError(t, err)
		assert.Equal(t, identity.RoleAnalyst, stored.Role())
	})

	t.Run("roles update for unknown identity", func(t *testing.T) {
		ghost := testutil.NewAdmin("Ghost")
		assert.True(t, apperrors.IsNotFoundError(repo.UpdateRoles(ctx, ghost)))
	})
}

func TestProjectRepository_OptimisticUpdate(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewProjectRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()

	p := testutil.NewProjectFixture(id.NewUUID(), testutil.WithCode("SIQ-REPO01"))
	require.NoError(t, repo.Create(ctx, p))

	first, err := repo.GetByCode(ctx, "SIQ-REPO01")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)

	require.NoError(t, first.StartPayment("pi_1", vo.NewMoney(5000, "usd"), testutil.BaseTime))
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, p.Version()+1, first.Version())

	require.NoError(t, second.Reject(testutil.BaseTime))
	err = repo.Update(ctx, second)
	assert.True(t, apperrors.IsConflictError(err))

	stored, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusSubmitted, stored.Status())
	assert.Equal(t, vo.PaymentStatusProcessing, stored.PaymentStatus())
	require.NotNil(t, stored.PaymentIntentID())
	assert.Equal(t, "pi_1", *stored.PaymentIntentID())

	t.Run("unknown project is not found", func(t *testing.T) {
		ghost := testutil.NewProjectFixture(id.NewUUID(), testutil.WithCode("SIQ-GHOST1"))
		assert.True(t, apperrors.IsNotFoundError(repo.Update(ctx, ghost)))
	})
}

func TestProjectRepository_UpdateJoinsTransaction(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewProjectRepository(gdb, logger.NewNopLogger())
	tm := db.NewTransactionManager(gdb)
	ctx := context.Background()

	p := testutil.NewProjectFixture(id.NewUUID(), testutil.WithCode("SIQ-TX0001"))
	require.NoError(t, repo.Create(ctx, p))

	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, p.Reject(testutil.BaseTime))
		require.NoError(t, repo.Update(txCtx, p))
		return apperrors.NewInternalError("abort")
	})
	require.Error(t, err)

	stored, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusSubmitted, stored.Status())
}

func TestProjectRepository_ListFilters(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewProjectRepository(gdb, logger.NewNopLogger())
	ctx := context.Background()

	clientA, clientB, analyst := id.NewUUID(), id.NewUUID(), id.NewUUID()
	require.NoError(t, repo.Create(ctx, testutil.NewProjectFixture(clientA, testutil.WithCode("SIQ-AAAAA1"))))
	require.NoError(t, repo.Create(ctx, testutil.NewProjectFixture(clientA, testutil.WithCode("SIQ-AAAAA2"),
		testutil.WithAnalyst(analyst), testutil.WithStatus(vo.StatusInProgress))))
	require.NoError(t, repo.Create(ctx, testutil.NewProjectFixture(clientB, testutil.WithCode("SIQ-BBBBB1"))))

	inProgress := vo.StatusInProgress
	tests := []struct {
		name   string
		filter project.ListFilter
		want   int64
	}{
		{"all", project.ListFilter{}, 3},
		{"by client", project.ListFilter{ClientID: &clientA}, 2},
		{"by analyst", project.ListFilter{AnalystID: &analyst}, 1},
		{"by status", project.ListFilter{Status: &inProgress}, 1},
		{"paged", project.ListFilter{Page: 2, PageSize: 2}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, total)
		})
	}

	t.Run("duplicate code is conflict", func(t *testing.T) {
		err := repo.Create(ctx, testutil.NewProjectFixture(clientB, testutil.WithCode("SIQ-BBBBB1")))
		assert.True(t, apperrors.IsConflictError(err))
	})
}

func TestMessageRepository_MarkReadFor(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewMessageRepository(gdb)
	ctx := context.Background()

	projectID, client, analyst := id.NewUUID(), id.NewUUID(), id.NewUUID()
	for i, sender := range []string{client, analyst, analyst} {
		require.NoError(t, repo.Create(ctx, &project.Message{
			ID:          id.NewUUID(),
			ProjectID:   projectID,
			SenderID:    sender,
			Content:     "note",
			ContentHTML: "<p>note</p>",
			CreatedAt:   testutil.BaseTime.Add(time.Duration(i) * time.Minute),
		}))
	}

	n, err := repo.MarkReadFor(ctx, projectID, client)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	msgs, err := repo.ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.False(t, msgs[0].IsRead)
	assert.True(t, msgs[1].IsRead)
	assert.True(t, msgs[2].IsRead)
}

func TestAttachmentRepositories(t *testing.T) {
	gdb := setupTestDB(t)
	files := NewProjectFileRepository(gdb)
	deliverables := NewDeliverableRepository(gdb)
	ctx := context.Background()
	projectID := id.NewUUID()

	f := &project.ProjectFile{
		ID: id.NewUUID(), ProjectID: projectID, UploadedBy: id.NewUUID(),
		FileType: vo.FileTypeData, FileName: "cohort.csv",
		StorageKey: "projects/SIQ-TEST01/data/20260302090000_cohort.csv",
		SizeBytes:  2048, ContentType: "text/csv", CreatedAt: testutil.BaseTime,
	}
	require.NoError(t, files.Create(ctx, f))

	gotFile, err := files.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.StorageKey, gotFile.StorageKey)
	assert.Equal(t, vo.FileTypeData, gotFile.FileType)

	d := &project.Deliverable{
		ID: id.NewUUID(), ProjectID: projectID, UploadedBy: id.NewUUID(),
		DeliverableType: vo.DeliverableReport, Title: "Final report", FileName: "report.pdf",
		StorageKey: "projects/SIQ-TEST01/report/20260302090000_report.pdf",
		SizeBytes:  4096, ContentType: "application/pdf", CreatedAt: testutil.BaseTime,
	}
	require.NoError(t, deliverables.Create(ctx, d))

	list, err := deliverables.ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Final report", list[0].Title)

	missing, err := deliverables.GetByID(ctx, id.NewUUID())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAuditRepository_AppendAndFilter(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewAuditRepository(gdb)
	ctx := context.Background()

	projectID, actor := id.NewUUID(), id.NewUUID()
	actions := []audit.Action{audit.ActionProjectSubmitted, audit.ActionStatusChanged, audit.ActionUnauthorizedProjectAccess}
	for i, action := range actions {
		entry, err := audit.NewEntry(audit.NewEntryParams{
			ID:         id.NewSortableID(),
			ProjectID:  projectID,
			IdentityID: actor,
			Action:     action,
			Details:    audit.Details{"step": i},
			IPAddress:  "203.0.113.9",
			CreatedAt:  testutil.BaseTime.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, entry))
	}

	system, err := audit.NewEntry(audit.NewEntryParams{
		ID:        id.NewSortableID(),
		Action:    audit.ActionFileDownloaded,
		Details:   audit.Details{"via": "token"},
		CreatedAt: testutil.BaseTime.Add(time.Minute),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, system))

	t.Run("newest first", func(t *testing.T) {
		entries, total, err := repo.List(ctx, audit.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Equal(t, audit.ActionFileDownloaded, entries[0].Action())
		assert.Nil(t, entries[0].IdentityID())
		assert.Equal(t, "token", entries[0].Details()["via"])
	})

	t.Run("by action", func(t *testing.T) {
		action := audit.ActionUnauthorizedProjectAccess
		entries, total, err := repo.List(ctx, audit.ListFilter{Action: &action})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.NotNil(t, entries[0].IPAddress())
		assert.Equal(t, "203.0.113.9", *entries[0].IPAddress())
	})

	t.Run("by project and window", func(t *testing.T) {
		since := testutil.BaseTime.Add(time.Second)
		entries, total, err := repo.List(ctx, audit.ListFilter{ProjectID: &projectID, Since: &since})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, entries, 2)
	})
}

func TestDownloadTokenRepository_MarkUsedOnce(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewDownloadTokenRepository(gdb)
	ctx := context.Background()

	tok, err := downloadtoken.NewToken(id.NewUUID(), id.NewUUID(), "abc123", true,
		testutil.BaseTime.Add(time.Hour), "", testutil.BaseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tok))

	reusable, err := downloadtoken.NewToken(id.NewUUID(), id.NewUUID(), "def456", false,
		testutil.BaseTime.Add(time.Hour), "", testutil.BaseTime)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, reusable))

	stored, err := repo.GetByHash(ctx, "def456")
	require.NoError(t, err)
	assert.False(t, stored.OneTime())

	won, err := repo.MarkUsed(ctx, tok.ID(), testutil.BaseTime)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkUsed(ctx, tok.ID(), testutil.BaseTime.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, won)

	stored, err = repo.GetByHash(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, stored.IsConsumed())
	assert.Nil(t, stored.CreatedBy())
}
