package usecases

import (
	"context"
	"strings"

	"github.com/shadowiq/shadowiq/internal/application/auditlog"
	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
	projectdto "github.com/shadowiq/shadowiq/internal/application/project/dto"
	"github.com/shadowiq/shadowiq/internal/domain/audit"
	"github.com/shadowiq/shadowiq/internal/domain/project"
	vo "github.com/shadowiq/shadowiq/internal/domain/project/valueobjects"
	"github.com/shadowiq/shadowiq/internal/shared/biztime"
	"github.com/shadowiq/shadowiq/internal/shared/db"
	"github.com/shadowiq/shadowiq/internal/shared/errors"
	"github.com/shadowiq/shadowiq/internal/shared/id"
	"github.com/shadowiq/shadowiq/internal/shared/logger"
)

// CompleteUploadCommand registers an object the client has PUT to a
// presigned URL. Title only applies to deliverables.
type CompleteUploadCommand struct {
	ActorID  string
	Project  *project.Project
	Type     string
	Key      string
	FileName string
	Title    string
}

// uploadVerifier checks an uploaded object before it is recorded. Objects
// that fail the size limit or the scan are deleted.
type uploadVerifier struct {
	storage objectstorage.ObjectStorage
	scanner objectstorage.VirusScanner
	opts    Options
	logger  logger.Interface
}

func (v *uploadVerifier) verify(ctx context.Context, p *project.Project, segment, key string) (*objectstorage.ObjectInfo, error) {
	if !project.KeyBelongsTo(key, p.Code(), segment) {
		return nil, errors.NewValidationError("key was not issued for this project")
	}

	var info *objectstorage.ObjectInfo
	err := callWithTimeout(ctx, v.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		info, err = v.storage.Head(ctx, key)
		return err
	})
	if errors.IsNotFoundError(err) {
		return nil, errors.NewValidationError("upload not found, put the file before completing")
	}
	if err != nil {
		return nil, upstream(v.logger, "object_storage", err, "project_id", p.ID(), "key", key)
	}

	if info.Size > v.opts.MaxUploadSize {
		v.discard(ctx, key)
		return nil, errors.NewValidationError("file exceeds maximum upload size")
	}

	var clean bool
	err = callWithTimeout(ctx, v.opts.CollaboratorTimeout, func(ctx context.Context) error {
		var err error
		clean, err = v.scanner.Scan(ctx, key)
		return err
	})
	if err != nil {
		return nil, upstream(v.logger, "virus_scanner", err, "project_id", p.ID(), "key", key)
	}
	if !clean {
		v.logger.Warnw("upload failed virus scan", "project_id", p.ID(), "key", key)
		v.discard(ctx, key)
		return nil, errors.NewValidationError("file rejected by virus scan")
	}
	return info, nil
}

func (v *uploadVerifier) discard(ctx context.Context, key string) {
	err := callWithTimeout(context.WithoutCancel(ctx), v.opts.CollaboratorTimeout, func(ctx context.Context) error {
		return v.storage.Delete(ctx, key)
	})
	if err != nil {
		v.logger.Warnw("failed to delete rejected upload", "collaborator", "object_storage", "key", key, "error", err)
	}
}

func displayName(fileName, key string) string {
	if name := strings.TrimSpace(fileName); name != "" {
		if clean, err := project.SanitizeFileName(name); err == nil {
			return clean
		}
	}
	_, name, _ := strings.Cut(key[strings.LastIndex(key, "/")+1:], "_")
	return name
}

type CompleteFileUploadExecutor interface {
	Execute(ctx context.Context, cmd CompleteUploadCommand) (*projectdto.FileResponse, error)
}

// CompleteFileUploadUseCase records a client upload.
type CompleteFileUploadUseCase struct {
	verifier uploadVerifier
	files    project.FileRepository
	recorder auditlog.Recorder
	tx       db.Transactor
	clock    biztime.Clock
	logger   logger.Interface
}

func NewCompleteFileUploadUseCase(
	storage objectstorage.ObjectStorage,
	scanner objectstorage.VirusScanner,
	files project.FileRepository,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *CompleteFileUploadUseCase {
	return &CompleteFileUploadUseCase{
		verifier: uploadVerifier{storage: storage, scanner: scanner, opts: opts.withDefaults(), logger: logger},
		files:    files,
		recorder: recorder,
		tx:       tx,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *CompleteFileUploadUseCase) Execute(ctx context.Context, cmd CompleteUploadCommand) (*projectdto.FileResponse, error) {
	if cmd.Project == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	fileType, err := vo.NewFileType(strings.TrimSpace(cmd.Type))
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	info, err := uc.verifier.verify(ctx, cmd.Project, fileType.String(), cmd.Key)
	if err != nil {
		return nil, err
	}

	file := &project.ProjectFile{
		ID:          id.NewUUID(),
		ProjectID:   cmd.Project.ID(),
		UploadedBy:  cmd.ActorID,
		FileType:    fileType,
		FileName:    displayName(cmd.FileName, cmd.Key),
		StorageKey:  cmd.Key,
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
		CreatedAt:   uc.clock.Now(),
	}
	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.files.Create(txCtx, file); err != nil {
			return err
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionFileUploaded,
			ProjectID:  file.ProjectID,
			IdentityID: cmd.ActorID,
			Details: audit.Details{
				"file_id":   file.ID,
				"file_name": file.FileName,
				"file_type": file.FileType.String(),
				"size":      file.SizeBytes,
			},
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to record upload", "project_id", file.ProjectID)
	}

	uc.logger.Infow("file uploaded", "project_id", file.ProjectID, "file_id", file.ID, "size", file.SizeBytes)
	return projectdto.ToFileResponse(file), nil
}

type CompleteDeliverableUploadExecutor interface {
	Execute(ctx context.Context, cmd CompleteUploadCommand) (*projectdto.DeliverableResponse, error)
}

// CompleteDeliverableUploadUseCase records an analyst upload.
type CompleteDeliverableUploadUseCase struct {
	verifier     uploadVerifier
	deliverables project.DeliverableRepository
	recorder     auditlog.Recorder
	tx           db.Transactor
	clock        biztime.Clock
	logger       logger.Interface
}

func NewCompleteDeliverableUploadUseCase(
	storage objectstorage.ObjectStorage,
	scanner objectstorage.VirusScanner,
	deliverables project.DeliverableRepository,
	recorder auditlog.Recorder,
	tx db.Transactor,
	clock biztime.Clock,
	opts Options,
	logger logger.Interface,
) *CompleteDeliverableUploadUseCase {
	return &CompleteDeliverableUploadUseCase{
		verifier:     uploadVerifier{storage: storage, scanner: scanner, opts: opts.withDefaults(), logger: logger},
		deliverables: deliverables,
		recorder:     recorder,
		tx:           tx,
		clock:        clock,
		logger:       logger,
	}
}

func (uc *CompleteDeliverableUploadUseCase) Execute(ctx context.Context, cmd CompleteUploadCommand) (*projectdto.DeliverableResponse, error) {
	if cmd.Project == nil {
		return nil, errors.NewNotFoundError("project not found")
	}
	deliverableType, err := vo.NewDeliverableType(strings.TrimSpace(cmd.Type))
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	title := strings.TrimSpace(cmd.Title)
	if len(title) > project.MaxTitleLength {
		return nil, errors.NewValidationError("title is too long")
	}

	info, err := uc.verifier.verify(ctx, cmd.Project, deliverableType.String(), cmd.Key)
	if err != nil {
		return nil, err
	}

	d := &project.Deliverable{
		ID:              id.NewUUID(),
		ProjectID:       cmd.Project.ID(),
		UploadedBy:      cmd.ActorID,
		DeliverableType: deliverableType,
		Title:           title,
		FileName:        displayName(cmd.FileName, cmd.Key),
		StorageKey:      cmd.Key,
		SizeBytes:       info.Size,
		ContentType:     info.ContentType,
		CreatedAt:       uc.clock.Now(),
	}
	if d.Title == "" {
		d.Title = d.FileName
	}

	err = uc.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.deliverables.Create(txCtx, d); err != nil {
			return err
		}
		return uc.recorder.Record(txCtx, auditlog.Event{
			Action:     audit.ActionDeliverableUploaded,
			ProjectID:  d.ProjectID,
			IdentityID: cmd.ActorID,
			Details: audit.Details{
				"deliverable_id":   d.ID,
				"deliverable_type": d.DeliverableType.String(),
				"file_name":        d.FileName,
				"size":             d.SizeBytes,
			},
		})
	})
	if err != nil {
		return nil, finish(uc.logger, err, "failed to record deliverable", "project_id", d.ProjectID)
	}

	uc.logger.Infow("deliverable uploaded", "project_id", d.ProjectID, "deliverable_id", d.ID, "type", d.DeliverableType)
	return projectdto.ToDeliverableResponse(d), nil
}
