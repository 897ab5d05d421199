package usecases

import (
	"context"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

type DownloadFileQuery struct {
	ActorID string
	Project *project.Project
	FileID  string
}

type DownloadFileExecutor interface {
	Execute(ctx context.Context, query DownloadFileQuery) (*PresignedTransfer, error)
}

// DownloadFileUseCase presigns a GET for a client upload of a project the
// caller may access.
type DownloadFileUseCase struct {
	files    project.FileRepository
	storage  objectstorage.ObjectStorage
	recorder auditlog.Recorder
	opts     Options
	logger   logger.Interface
}

func NewDownloadFileUseCase(
	files project.FileRepository,
	storage objectstorage.ObjectStorage,
	recorder auditlog.Recorder,
	opts Options,
	logger logger.Interface,
) *DownloadFileUseCase {
	return &DownloadFileUseCase{
		files:    files,
		storage:  storage,
		recorder: recorder,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

func (uc *DownloadFileUseCase) Execute(ctx context.Context, query DownloadFileQuery) (*PresignedTransfer, error) {
	if query.Project == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	file, err := uc.files.GetByID(ctx, query.FileID)
	if err != nil {
		uc.logger.Errorw("failed to load file", "file_id", query.FileID, "error", err)
		return nil, errors.NewInternalError("failed to load file")
	}
	if file == nil || file.ProjectID != query.Project.ID() {
		return nil, errors.NewNotFoundError("file not found")
	}

	var url *objectstorage.PresignedURL
	err = callWithTimeout(ctx, uc.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		url, err = uc.storage.PresignDownload(ctx, file.StorageKey, file.FileName, uc.opts.DownloadURLTTL)
		return err
	})
	if err != nil {
		return nil, upstream(uc.logger, "object_storage", err, "file_id", file.ID)
	}

	if err := uc.recorder.Record(ctx, auditlog.Event{
		Action:     audit.ActionFileDownloaded,
		ProjectID:  file.ProjectID,
		IdentityID: query.ActorID,
		Details:    audit.Details{"file_id": file.ID, "file_name": file.FileName, "via": "session"},
	}); err != nil {
		uc.logger.Errorw("failed to record download", "file_id", file.ID, "error", err)
		return nil, errors.NewInternalError("failed to record download")
	}

	return &PresignedTransfer{URL: url.URL, Method: url.Method, ExpiresAt: url.ExpiresAt}, nil
}
