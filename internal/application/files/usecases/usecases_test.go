package usecases

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/testutil"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

const testKeyPrefix = "projects/SIQ-TEST01/"

type filesFixture struct {
	storage      *testutil.MockObjectStorage
	files        *testutil.MockFileRepository
	deliverables *testutil.MockDeliverableRepository
	tokens       *testutil.MockDownloadTokenRepository
	generator    *testutil.SequenceTokens
	audit        *testutil.MockAuditRepository
	clock        *testutil.FixedClock
	tx           *testutil.MockTransactor
	recorder     auditlog.Recorder
	opts         Options
	log          logger.Interface
	project      *project.Project
}

func newFilesFixture() *filesFixture {
	f := &filesFixture{
		storage:      testutil.NewMockObjectStorage(),
		files:        testutil.NewMockFileRepository(),
		deliverables: testutil.NewMockDeliverableRepository(),
		tokens:       testutil.NewMockDownloadTokenRepository(),
		generator:    &testutil.SequenceTokens{},
		audit:        testutil.NewMockAuditRepository(),
		clock:        testutil.NewFixedClock(testutil.BaseTime),
		tx:           &testutil.MockTransactor{},
		opts:         Options{MaxUploadSize: 1 << 20},
		log:          logger.NewNopLogger(),
		project:      testutil.NewProjectFixture("client-1", testutil.WithStatus(vo.StatusInProgress)),
	}
	f.recorder = auditlog.NewRecorder(f.audit, f.clock, f.log)
	return f
}

func (f *filesFixture) addDeliverable(t *testing.T) *project.Deliverable {
	t.Helper()
	d := &project.Deliverable{
		ID:              "deliverable-1",
		ProjectID:       f.project.ID(),
		UploadedBy:      "analyst-1",
		DeliverableType: vo.DeliverableReport,
		Title:           "Final report",
		FileName:        "report.pdf",
		StorageKey:      testKeyPrefix + "report/20260302090000_report.pdf",
		CreatedAt:       testutil.BaseTime,
	}
	require.NoError(t, f.deliverables.Create(context.Background(), d))
	return d
}

func TestRequestUploadURL(t *testing.T) {
	tests := []struct {
		name        string
		deliverable bool
		fileType    string
		fileName    string
		size        int64
		wantKey     string
		wantErr     bool
	}{
		{name: "client data file", fileType: "data", fileName: "results.csv", size: 1024, wantKey: testKeyPrefix + "data/20260302090000_results.csv"},
		{name: "file name is sanitized", fileType: "document", fileName: "../my notes.docx", size: 10, wantKey: testKeyPrefix + "document/20260302090000_my_notes.docx"},
		{name: "analyst deliverable", deliverable: true, fileType: "notebook", fileName: "analysis.ipynb", size: 10, wantKey: testKeyPrefix + "notebook/20260302090000_analysis.ipynb"},
		{name: "deliverable type on a file", fileType: "report", fileName: "x.pdf", size: 10, wantErr: true},
		{name: "file type on a deliverable", deliverable: true, fileType: "data", fileName: "x.csv", size: 10, wantErr: true},
		{name: "too large", fileType: "data", fileName: "big.csv", size: 2 << 20, wantErr: true},
		{name: "empty", fileType: "data", fileName: "empty.csv", size: 0, wantErr: true},
		{name: "missing name", fileType: "data", fileName: " ", size: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFilesFixture()
			uc := NewRequestUploadURLUseCase(f.storage, f.clock, f.opts, f.log)

			got, err := uc.Execute(context.Background(), RequestUploadURLCommand{
				Project:     f.project,
				Deliverable: tt.deliverable,
				Type:        tt.fileType,
				FileName:    tt.fileName,
				Size:        tt.size,
			})

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, got.Key)
			assert.Equal(t, "PUT", got.Method)
			assert.Equal(t, "application/octet-stream", got.Headers["Content-Type"])
		})
	}
}

func TestRequestUploadURL_StorageFailureIsUpstream(t *testing.T) {
	f := newFilesFixture()
	f.storage.PresignErr = stderrors.New("s3 unavailable")
	uc := NewRequestUploadURLUseCase(f.storage, f.clock, f.opts, f.log)

	_, err := uc.Execute(context.Background(), RequestUploadURLCommand{Project: f.project, Type: "data", FileName: "a.csv", Size: 1})

	assert.True(t, errors.IsUpstreamError(err))
}

func TestCompleteFileUpload(t *testing.T) {
	key := testKeyPrefix + "data/20260302090000_results.csv"

	t.Run("records the file and audits it", func(t *testing.T) {
		f := newFilesFixture()
		f.storage.Put(key, 2048, "text/csv")
		uc := NewCompleteFileUploadUseCase(f.storage, testutil.MockVirusScanner{}, f.files, f.recorder, f.tx, f.clock, f.opts, f.log)

		resp, err := uc.Execute(context.Background(), CompleteUploadCommand{ActorID: "client-1", Project: f.project, Type: "data", Key: key})

		require.NoError(t, err)
		assert.Equal(t, "results.csv", resp.FileName)
		assert.Equal(t, int64(2048), resp.SizeBytes)
		stored, err := f.files.ListByProject(context.Background(), f.project.ID())
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, key, stored[0].StorageKey)

		entries := f.audit.WithAction(audit.ActionFileUploaded)
		require.Len(t, entries, 1)
		assert.Equal(t, resp.ID, entries[0].Details()["file_id"])
	})

	t.Run("missing object", func(t *testing.T) {
		f := newFilesFixture()
		uc := NewCompleteFileUploadUseCase(f.storage, testutil.MockVirusScanner{}, f.files, f.recorder, f.tx, f.clock, f.opts, f.log)

		_, err := uc.Execute(context.Background(), CompleteUploadCommand{Project: f.project, Type: "data", Key: key})

		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, f.audit.Entries())
	})

	t.Run("key from another project", func(t *testing.T) {
		f := newFilesFixture()
		foreign := "projects/SIQ-OTHER1/data/20260302090000_results.csv"
		f.storage.Put(foreign, 10, "text/csv")
		uc := NewCompleteFileUploadUseCase(f.storage, testutil.MockVirusScanner{}, f.files, f.recorder, f.tx, f.clock, f.opts, f.log)

		_, err := uc.Execute(context.Background(), CompleteUploadCommand{Project: f.project, Type: "data", Key: foreign})

		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("infected upload is deleted", func(t *testing.T) {
		f := newFilesFixture()
		infected := testKeyPrefix + "data/20260302090000_infected.csv"
		f.storage.Put(infected, 10, "text/csv")
		uc := NewCompleteFileUploadUseCase(f.storage, testutil.MockVirusScanner{}, f.files, f.recorder, f.tx, f.clock, f.opts, f.log)

		_, err := uc.Execute(context.Background(), CompleteUploadCommand{Project: f.project, Type: "data", Key: infected})

		assert.True(t, errors.IsValidationError(err))
		assert.Equal(t, []string{infected}, f.storage.Deleted)
		assert.Empty(t, f.audit.Entries())
	})

	t.Run("oversized upload is deleted", func(t *testing.T) {
		f := newFilesFixture()
		f.storage.Put(key, 5<<20, "text/csv")
		uc := NewCompleteFileUploadUseCase(f.storage, testutil.MockVirusScanner{}, f.files, f.recorder, f.tx, f.clock, f.opts, f.log)

		_, err := uc.Execute(context.Background(), CompleteUploadCommand{Project: f.project, Type: "data", Key: key})

		assert.True(t, errors.IsValidationError(err))
		assert.Equal(t, []string{key}, f.storage.Deleted)
	})

	t.Run("scanner outage is upstream and keeps the object", func(t *testing.T) {
		f := newFilesFixture()
		f.storage.Put(key, 10, "text/csv")
		scanner := testutil.MockVirusScanner{Err: stderrors.New("scanner down")}
		uc := NewCompleteFileUploadUseCase(f.storage, scanner, f.files, f.recorder, f.tx, f.clock, f.opts, f.log)

		_, err := uc.Execute(context.Background(), CompleteUploadCommand{Project: f.project, Type: "data", Key: key})

		assert.True(t, errors.IsUpstreamError(err))
		assert.Empty(t, f.storage.Deleted)
	})
}

func TestCompleteDeliverableUpload(t *testing.T) {
	f := newFilesFixture()
	key := testKeyPrefix + "qa_report/20260302090000_qa.pdf"
	f.storage.Put(key, 4096, "application/pdf")
	uc := NewCompleteDeliverableUploadUseCase(f.storage, testutil.MockVirusScanner{}, f.deliverables, f.recorder, f.tx, f.clock, f.opts, f.log)

	resp, err := uc.Execute(context.Background(), CompleteUploadCommand{
		ActorID:  "analyst-1",
		Project:  f.project,
		Type:     "qa_report",
		Key:      key,
		FileName: "qa.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "qa_report", resp.DeliverableType)
	assert.Equal(t, "qa.pdf", resp.Title)
	entries := f.audit.WithAction(audit.ActionDeliverableUploaded)
	require.Len(t, entries, 1)
	assert.Equal(t, "analyst-1", *entries[0].IdentityID())
}

func TestDownloadFile(t *testing.T) {
	f := newFilesFixture()
	file := &project.ProjectFile{ID: "file-1", ProjectID: f.project.ID(), FileName: "results.csv", StorageKey: testKeyPrefix + "data/x_results.csv"}
	require.NoError(t, f.files.Create(context.Background(), file))
	other := &project.ProjectFile{ID: "file-2", ProjectID: "another-project", StorageKey: "projects/SIQ-OTHER1/data/x_y.csv"}
	require.NoError(t, f.files.Create(context.Background(), other))
	uc := NewDownloadFileUseCase(f.files, f.storage, f.recorder, f.opts, f.log)

	got, err := uc.Execute(context.Background(), DownloadFileQuery{ActorID: "client-1", Project: f.project, FileID: "file-1"})
	require.NoError(t, err)
	assert.Contains(t, got.URL, file.StorageKey)
	assert.Len(t, f.audit.WithAction(audit.ActionFileDownloaded), 1)

	_, err = uc.Execute(context.Background(), DownloadFileQuery{Project: f.project, FileID: "file-2"})
	assert.True(t, errors.IsNotFoundError(err), "files of other projects are not reachable")
}

func TestIssueDownloadToken(t *testing.T) {
	f := newFilesFixture()
	d := f.addDeliverable(t)
	uc := NewIssueDownloadTokenUseCase(f.deliverables, f.tokens, f.generator, f.clock, f.log)
	reusable := false

	tests := []struct {
		name        string
		cmd         IssueDownloadTokenCommand
		wantOneTime bool
		wantTTL     time.Duration
		wantErr     func(error) bool
	}{
		{name: "defaults", cmd: IssueDownloadTokenCommand{Project: f.project, DeliverableID: d.ID}, wantOneTime: true, wantTTL: time.Hour},
		{name: "reusable for a day", cmd: IssueDownloadTokenCommand{Project: f.project, DeliverableID: d.ID, OneTime: &reusable, TTL: 24 * time.Hour}, wantTTL: 24 * time.Hour},
		{name: "ttl above cap", cmd: IssueDownloadTokenCommand{Project: f.project, DeliverableID: d.ID, TTL: 8 * 24 * time.Hour}, wantErr: errors.IsValidationError},
		{name: "unknown deliverable", cmd: IssueDownloadTokenCommand{Project: f.project, DeliverableID: "nope"}, wantErr: errors.IsNotFoundError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.Execute(context.Background(), tt.cmd)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOneTime, got.OneTime)
			assert.Equal(t, testutil.BaseTime.Add(tt.wantTTL), got.ExpiresAt)
			assert.Equal(t, "/downloads/"+got.Token, got.Path)
		})
	}
}

func TestRedeemDownloadToken_OneTime(t *testing.T) {
	f := newFilesFixture()
	d := f.addDeliverable(t)
	issue := NewIssueDownloadTokenUseCase(f.deliverables, f.tokens, f.generator, f.clock, f.log)
	redeem := NewRedeemDownloadTokenUseCase(f.tokens, f.deliverables, f.storage, f.generator, f.recorder, f.tx, f.clock, f.opts, f.log)
	ctx := context.Background()

	issued, err := issue.Execute(ctx, IssueDownloadTokenCommand{ActorID: "client-1", Project: f.project, DeliverableID: d.ID})
	require.NoError(t, err)

	f.storage.PresignErr = stderrors.New("s3 unavailable")
	_, err = redeem.Execute(ctx, RedeemDownloadTokenCommand{Token: issued.Token})
	require.True(t, errors.IsUpstreamError(err))
	f.storage.PresignErr = nil

	got, err := redeem.Execute(ctx, RedeemDownloadTokenCommand{Token: issued.Token})
	require.NoError(t, err, "a storage failure must not spend the token")
	assert.Contains(t, got.URL, d.StorageKey)

	_, err = redeem.Execute(ctx, RedeemDownloadTokenCommand{Token: issued.Token})
	assert.True(t, errors.IsTokenAlreadyUsedError(err))

	entries := f.audit.WithAction(audit.ActionFileDownloaded)
	require.Len(t, entries, 1)
	assert.Equal(t, d.ID, entries[0].Details()["deliverable_id"])
	assert.Nil(t, entries[0].IdentityID())
}

func TestRedeemDownloadToken_Reusable(t *testing.T) {
	f := newFilesFixture()
	d := f.addDeliverable(t)
	reusable := false
	issued, err := NewIssueDownloadTokenUseCase(f.deliverables, f.tokens, f.generator, f.clock, f.log).
		Execute(context.Background(), IssueDownloadTokenCommand{Project: f.project, DeliverableID: d.ID, OneTime: &reusable})
	require.NoError(t, err)
	redeem := NewRedeemDownloadTokenUseCase(f.tokens, f.deliverables, f.storage, f.generator, f.recorder, f.tx, f.clock, f.opts, f.log)

	for i := 0; i < 3; i++ {
		_, err := redeem.Execute(context.Background(), RedeemDownloadTokenCommand{Token: issued.Token})
		require.NoError(t, err)
	}
	assert.Len(t, f.audit.WithAction(audit.ActionFileDownloaded), 3)
}

func TestRedeemDownloadToken_Errors(t *testing.T) {
	f := newFilesFixture()
	d := f.addDeliverable(t)
	issued, err := NewIssueDownloadTokenUseCase(f.deliverables, f.tokens, f.generator, f.clock, f.log).
		Execute(context.Background(), IssueDownloadTokenCommand{Project: f.project, DeliverableID: d.ID})
	require.NoError(t, err)
	redeem := NewRedeemDownloadTokenUseCase(f.tokens, f.deliverables, f.storage, f.generator, f.recorder, f.tx, f.clock, f.opts, f.log)

	_, err = redeem.Execute(context.Background(), RedeemDownloadTokenCommand{Token: "tok-unknown"})
	assert.True(t, errors.IsNotFoundError(err))

	f.clock.Advance(time.Hour)
	_, err = redeem.Execute(context.Background(), RedeemDownloadTokenCommand{Token: issued.Token})
	assert.True(t, errors.IsTokenExpiredError(err), "expiry is inclusive")

	assert.Empty(t, f.audit.Entries())
}
