package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/internal/logging"
	"github.com/limbo/moodkit/internal/notify"
	"github.com/limbo/moodkit/internal/repository"
	"github.com/limbo/moodkit/pkg/entity"
)

type MoodService struct {
	repo   repository.MoodRecordsRepositoryI
	files  AttachmentStore
	events notify.Publisher
	locks  *keyedLocks[int64]
	paths  *keyedLocks[string]
	now    func() time.Time
	logger *slog.Logger
}

type MoodOption func(*MoodService)

func WithPublisher(p notify.Publisher) MoodOption {
	return func(ms *MoodService) {
		ms.events = p
	}
}

func WithClock(now func() time.Time) MoodOption {
	return func(ms *MoodService) {
		ms.now = now
	}
}

func WithMoodLogger(logger *slog.Logger) MoodOption {
	return func(ms *MoodService) {
		ms.logger = logger
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(notify.Event) {}

func NewMoodService(moodRepo repository.MoodRecordsRepositoryI, files AttachmentStore, opts ...MoodOption) *MoodService {
	if moodRepo == nil {
		panic("provided nil moodRepo")
	}
	if files == nil {
		panic("provided nil attachment store")
	}
	InitValidator()
	ms := &MoodService{
		repo:  moodRepo,
		files: files,
		locks: newKeyedLocks[int64](),
		paths: newKeyedLocks[string](),
	}
	for _, opt := range opts {
		opt(ms)
	}
	if ms.events == nil {
		ms.events = noopPublisher{}
	}
	if ms.now == nil {
		ms.now = time.Now
	}
	if ms.logger == nil {
		ms.logger = slog.Default()
	}
	return ms
}

// timestamp is UTC with microsecond precision so every backend stores it exactly.
func (ms *MoodService) timestamp() time.Time {
	return ms.now().UTC().Truncate(time.Microsecond)
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return errors.Join(errorvalues.ErrValidation, errors.New("owner is empty"))
	}
	return nil
}

func (ms *MoodService) StoreNewAttachment(ctx context.Context, src io.Reader, ext string) (string, error) {
	return ms.files.Stage(ctx, src, ext)
}

// stagedPath validates a path produced earlier by StoreNewAttachment.
func (ms *MoodService) stagedPath(path string) error {
	if !ms.files.Owns(path) {
		return errors.Join(errorvalues.ErrValidation, errors.New("image path is not a staged attachment"))
	}
	if !ms.files.Exists(path) {
		return errorvalues.AttachmentError("using staged attachment", errors.New("file doesn't exist"))
	}
	return nil
}

func (ms *MoodService) CreateEntry(ctx context.Context, owner string, req *CreateEntryRequest) (*entity.MoodRecord, error) {
	ctx, logger := logging.Operation(ctx, ms.logger, "create_entry", slog.String("owner", owner))
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("create request is nil"))
	}
	rec := entity.MoodRecord{
		OwnerUsername: owner,
		DiaryName:     normalizeDiaryName(req.DiaryName),
		MoodEmojiID:   NormalizeMoodID(req.MoodEmojiID),
		FeelingLabel:  strings.TrimSpace(req.FeelingLabel),
		Description:   req.Description,
		Rating:        req.Rating,
	}
	if err := validateRecord(&rec); err != nil {
		return nil, err
	}
	if req.Image != nil && req.ImagePath != "" {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("both image and image path supplied"))
	}
	if req.ImagePath != "" {
		// held until the row is committed so a concurrent release can't remove the file
		unlockPath := ms.paths.lock(req.ImagePath)
		defer unlockPath()
		if err := ms.stagedPath(req.ImagePath); err != nil {
			return nil, err
		}
		rec.SetImage(req.ImagePath)
	}

	staged := ""
	if req.Image != nil {
		path, err := ms.files.Stage(ctx, req.Image.Data, req.Image.Ext)
		if err != nil {
			return nil, err
		}
		staged = path
		rec.SetImage(path)
	}

	rec.CreatedAt = ms.timestamp()
	id, err := ms.repo.Create(ctx, &rec)
	if err != nil {
		if staged != "" {
			ms.discard(ctx, staged)
		}
		return nil, err
	}
	rec.ID = id
	logger.Info("mood entry created", slog.Int64("id", id), slog.Bool("has_image", rec.HasImage))
	ms.events.Publish(notify.Event{Kind: notify.EntryCreated, Owner: owner, RecordID: id, At: rec.CreatedAt})
	return &rec, nil
}

func (ms *MoodService) GetEntry(ctx context.Context, owner string, id int64) (*entity.MoodRecord, error) {
	rec, err := ms.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.OwnerUsername != owner {
		return nil, errorvalues.ErrWrongOwner
	}
	return rec, nil
}

func (ch *EntryChanges) validate() error {
	if ch.Image != nil && ch.ImagePath != nil {
		return errors.Join(errorvalues.ErrValidation, errors.New("both image and image path supplied"))
	}
	if ch.DiaryName != nil {
		if err := validateVar("diary_name", strings.TrimSpace(*ch.DiaryName), "max=100"); err != nil {
			return err
		}
	}
	if ch.MoodEmojiID != nil {
		if err := validateVar("mood_emoji_id", NormalizeMoodID(*ch.MoodEmojiID), "required,mood_id,max=64"); err != nil {
			return err
		}
	}
	if ch.FeelingLabel != nil {
		if err := validateVar("feeling_label", strings.TrimSpace(*ch.FeelingLabel), "required,max=100"); err != nil {
			return err
		}
	}
	if ch.Description != nil {
		if err := validateVar("description", *ch.Description, "max=1000"); err != nil {
			return err
		}
	}
	if ch.Rating != nil {
		if err := validateVar("rating", *ch.Rating, "min=0,max=3"); err != nil {
			return err
		}
	}
	return nil
}

func (ch *EntryChanges) applyTo(rec *entity.MoodRecord) {
	if ch.DiaryName != nil {
		rec.DiaryName = normalizeDiaryName(*ch.DiaryName)
	}
	if ch.MoodEmojiID != nil {
		rec.MoodEmojiID = NormalizeMoodID(*ch.MoodEmojiID)
	}
	if ch.FeelingLabel != nil {
		rec.FeelingLabel = strings.TrimSpace(*ch.FeelingLabel)
	}
	if ch.Description != nil {
		rec.Description = *ch.Description
	}
	if ch.Rating != nil {
		rec.Rating = *ch.Rating
	}
}

// UpdateEntry replaces an attachment in three steps: stage the new file, commit the row,
// then release the previous file. A stored attachment whose file has disappeared is
// cleared by the same commit unless a new one is supplied.
func (ms *MoodService) UpdateEntry(ctx context.Context, owner string, id int64, changes *EntryChanges) (*entity.MoodRecord, error) {
	ctx, logger := logging.Operation(ctx, ms.logger, "update_entry", slog.String("owner", owner), slog.Int64("id", id))
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	if changes == nil {
		changes = &EntryChanges{}
	}
	if err := changes.validate(); err != nil {
		return nil, err
	}
	unlock := ms.locks.lock(id)
	defer unlock()

	unlockPath := func() {}
	if changes.ImagePath != nil && *changes.ImagePath != "" {
		unlockPath = ms.paths.lock(*changes.ImagePath)
		if err := ms.stagedPath(*changes.ImagePath); err != nil {
			unlockPath()
			return nil, err
		}
	}

	var newPath *string
	staged := ""
	switch {
	case changes.Image != nil:
		path, err := ms.files.Stage(ctx, changes.Image.Data, changes.Image.Ext)
		if err != nil {
			unlockPath()
			return nil, err
		}
		staged = path
		newPath = &staged
	case changes.ImagePath != nil:
		newPath = changes.ImagePath
	}

	previous := ""
	updated, err := ms.repo.Update(ctx, id, func(rec *entity.MoodRecord) error {
		if rec.OwnerUsername != owner {
			return errorvalues.ErrWrongOwner
		}
		if rec.HasImage {
			previous = rec.ImagePath
		}
		changes.applyTo(rec)
		switch {
		case newPath != nil:
			rec.SetImage(*newPath)
		case rec.HasImage && !ms.files.Exists(rec.ImagePath):
			logger.Warn("attachment file is missing, clearing reference", slog.String("path", rec.ImagePath))
			rec.SetImage("")
		}
		now := ms.timestamp()
		rec.UpdatedAt = &now
		return validateRecord(rec)
	})
	unlockPath()
	if err != nil {
		if staged != "" {
			ms.discard(ctx, staged)
		}
		return nil, err
	}
	if previous != "" && previous != updated.ImagePath {
		ms.release(ctx, previous)
	}
	logger.Info("mood entry updated")
	ms.events.Publish(notify.Event{Kind: notify.EntryUpdated, Owner: owner, RecordID: id, At: *updated.UpdatedAt})
	return updated, nil
}

func (ms *MoodService) DeleteEntry(ctx context.Context, owner string, id int64) error {
	ctx, logger := logging.Operation(ctx, ms.logger, "delete_entry", slog.String("owner", owner), slog.Int64("id", id))
	if err := checkOwner(owner); err != nil {
		return err
	}
	unlock := ms.locks.lock(id)
	defer unlock()

	deleted, err := ms.repo.Delete(ctx, id, func(rec *entity.MoodRecord) error {
		if rec.OwnerUsername != owner {
			return errorvalues.ErrWrongOwner
		}
		return nil
	})
	if err != nil {
		return err
	}
	if deleted.HasImage {
		ms.release(ctx, deleted.ImagePath)
	}
	logger.Info("mood entry deleted")
	ms.events.Publish(notify.Event{Kind: notify.EntryDeleted, Owner: owner, RecordID: id, At: ms.timestamp()})
	return nil
}

func (ms *MoodService) EnsureDeleted(ctx context.Context, owner string, id int64) error {
	err := ms.DeleteEntry(ctx, owner, id)
	if errors.Is(err, errorvalues.ErrMoodRecordNotFound) {
		return nil
	}
	return err
}

func (ms *MoodService) ListEntries(ctx context.Context, owner string) ([]entity.MoodRecord, error) {
	if err := checkOwner(owner); err != nil {
		return nil, err
	}
	records, err := ms.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	snapshot := make([]entity.MoodRecord, len(records))
	for i, r := range records {
		snapshot[i] = r.Clone()
	}
	return snapshot, nil
}

func (ms *MoodService) Refresh(ctx context.Context, owner string) ([]entity.MoodRecord, error) {
	return ms.ListEntries(ctx, owner)
}

// AttachmentAvailable reports whether rec's image can be shown. It never changes rec.
func (ms *MoodService) AttachmentAvailable(rec *entity.MoodRecord) bool {
	return rec != nil && rec.HasImage && ms.files.Exists(rec.ImagePath)
}

// PruneOrphanAttachments removes files older than olderThan that no record references.
// The grace period protects files staged for a commit still in flight.
func (ms *MoodService) PruneOrphanAttachments(ctx context.Context, olderThan time.Duration) (int, error) {
	ctx, logger := logging.Operation(ctx, ms.logger, "prune_attachments")
	referenced, err := ms.repo.ListImagePaths(ctx)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		inUse[p] = struct{}{}
	}
	files, err := ms.files.List()
	if err != nil {
		return 0, err
	}
	cutoff := ms.now().Add(-olderThan)
	pruned := 0
	for _, f := range files {
		if _, ok := inUse[f.Path]; ok || f.ModTime.After(cutoff) {
			continue
		}
		if ms.release(ctx, f.Path) {
			pruned++
		}
	}
	if pruned > 0 {
		logger.Info("orphan attachments pruned", slog.Int("count", pruned))
	}
	return pruned, nil
}

// release deletes a file after re-checking that no committed record references it.
// Failures are logged and swallowed; the row is the source of truth.
// The path lock covers both the check and the removal, so a write committing the
// same path waits for the removal and then sees the file gone.
func (ms *MoodService) release(ctx context.Context, path string) bool {
	unlock := ms.paths.lock(path)
	defer unlock()
	ctx = context.WithoutCancel(ctx)
	logger := logging.FromContext(ctx).With(slog.String("path", path))
	inUse, err := ms.repo.ImagePathInUse(ctx, path)
	if err != nil {
		logger.Warn("attachment kept: reference check failed", slog.String("error", err.Error()))
		return false
	}
	if inUse {
		logger.Warn("attachment kept: still referenced")
		return false
	}
	if err = ms.files.Remove(ctx, path); err != nil {
		logger.Warn("removing attachment failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// discard removes a file staged by the current call whose commit failed.
func (ms *MoodService) discard(ctx context.Context, path string) {
	if err := ms.files.Remove(context.WithoutCancel(ctx), path); err != nil {
		logging.FromContext(ctx).Warn("removing uncommitted attachment failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}
