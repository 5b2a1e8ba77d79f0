package service_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/limbo/moodkit/internal/attachment"
	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/internal/repository"
	"github.com/limbo/moodkit/internal/repository/mocks"
	"github.com/limbo/moodkit/internal/service"
	"github.com/limbo/moodkit/internal/worker"
	"github.com/limbo/moodkit/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 14, 9, 30, 0, 123456789, time.UTC)

func newFiles(t *testing.T) *attachment.Manager {
	t.Helper()
	m, err := attachment.NewManager(filepath.Join(t.TempDir(), "attachments"), worker.New(2))
	require.NoError(t, err)
	return m
}

func ptr[T any](v T) *T {
	return &v
}

// applyTo mimics a repository that reloads stored, runs the mutator and saves.
func applyTo(stored entity.MoodRecord) func(context.Context, int64, repository.RecordMutator) (*entity.MoodRecord, error) {
	return func(_ context.Context, _ int64, apply repository.RecordMutator) (*entity.MoodRecord, error) {
		rec := stored.Clone()
		if err := apply(&rec); err != nil {
			return nil, err
		}
		return &rec, nil
	}
}

func TestCreateEntry(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	files := newFiles(t)
	serv := service.NewMoodService(repo, files, service.WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	testCases := []struct {
		Desc         string
		Error        error
		Owner        string
		Req          *service.CreateEntryRequest
		MockPrepFunc func()
		Check        func(t *testing.T, rec *entity.MoodRecord)
	}{
		{
			Desc:  "defaults and normalization",
			Owner: "alice",
			Req:   &service.CreateEntryRequest{MoodEmojiID: "Happy.PNG", FeelingLabel: " Happy ", Rating: 2},
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec *entity.MoodRecord) (int64, error) {
					assert.Equal(t, entity.DefaultDiaryName, rec.DiaryName)
					assert.Equal(t, "happy", rec.MoodEmojiID)
					assert.Equal(t, "Happy", rec.FeelingLabel)
					assert.Nil(t, rec.UpdatedAt)
					return 1, nil
				})
			},
			Check: func(t *testing.T, rec *entity.MoodRecord) {
				assert.Equal(t, int64(1), rec.ID)
				assert.Equal(t, fixedNow.Truncate(time.Microsecond), rec.CreatedAt)
				assert.False(t, rec.HasImage)
			},
		},
		{
			Desc:         "rating out of range",
			Error:        errorvalues.ErrValidation,
			Owner:        "alice",
			Req:          &service.CreateEntryRequest{MoodEmojiID: "sad", FeelingLabel: "Sad", Rating: 4},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "negative rating",
			Error:        errorvalues.ErrValidation,
			Owner:        "alice",
			Req:          &service.CreateEntryRequest{MoodEmojiID: "sad", FeelingLabel: "Sad", Rating: -1},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "missing mood",
			Error:        errorvalues.ErrValidation,
			Owner:        "alice",
			Req:          &service.CreateEntryRequest{FeelingLabel: "Sad"},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "empty owner",
			Error:        errorvalues.ErrValidation,
			Owner:        " ",
			Req:          &service.CreateEntryRequest{MoodEmojiID: "sad", FeelingLabel: "Sad"},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "nil request",
			Error:        errorvalues.ErrValidation,
			Owner:        "alice",
			MockPrepFunc: func() {},
		},
		{
			Desc:         "image path outside attachments dir",
			Error:        errorvalues.ErrValidation,
			Owner:        "alice",
			Req:          &service.CreateEntryRequest{MoodEmojiID: "sad", FeelingLabel: "Sad", ImagePath: "/etc/passwd"},
			MockPrepFunc: func() {},
		},
		{
			Desc:  "storage error",
			Error: errorvalues.ErrStorage,
			Owner: "alice",
			Req:   &service.CreateEntryRequest{MoodEmojiID: "sad", FeelingLabel: "Sad"},
			MockPrepFunc: func() {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(0), errorvalues.StorageError("creating mood record db error", errors.New("db error")))
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rec, err := serv.CreateEntry(ctx, tc.Owner, tc.Req)
			if tc.Error != nil {
				assert.ErrorIs(t, err, tc.Error)
				assert.Nil(t, rec)
				return
			}
			require.NoError(t, err)
			tc.Check(t, rec)
		})
	}
}

func TestCreateEntryDiscardsStagedImageOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	files := newFiles(t)
	serv := service.NewMoodService(repo, files)

	var staged string
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec *entity.MoodRecord) (int64, error) {
		staged = rec.ImagePath
		assert.True(t, files.Exists(staged))
		return 0, errorvalues.StorageError("creating mood record db error", errors.New("disk full"))
	})
	_, err := serv.CreateEntry(context.Background(), "alice", &service.CreateEntryRequest{
		MoodEmojiID:  "happy",
		FeelingLabel: "Happy",
		Image:        &service.ImageUpload{Data: bytes.NewReader([]byte("png")), Ext: ".png"},
	})
	assert.ErrorIs(t, err, errorvalues.ErrStorage)
	require.NotEmpty(t, staged)
	assert.False(t, files.Exists(staged))
	left, err := files.List()
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestGetEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	serv := service.NewMoodService(repo, newFiles(t))
	ctx := context.Background()
	stored := &entity.MoodRecord{ID: 3, OwnerUsername: "alice", MoodEmojiID: "happy", FeelingLabel: "Happy"}

	t.Run("own record", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), int64(3)).Return(stored, nil)
		rec, err := serv.GetEntry(ctx, "alice", 3)
		assert.NoError(t, err)
		assert.Equal(t, stored, rec)
	})
	t.Run("someone else's", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), int64(3)).Return(stored, nil)
		_, err := serv.GetEntry(ctx, "bob", 3)
		assert.ErrorIs(t, err, errorvalues.ErrWrongOwner)
	})
	t.Run("absent", func(t *testing.T) {
		repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(nil, errorvalues.ErrMoodRecordNotFound)
		_, err := serv.GetEntry(ctx, "alice", 4)
		assert.ErrorIs(t, err, errorvalues.ErrNotFound)
	})
}

func TestUpdateEntry(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	serv := service.NewMoodService(repo, newFiles(t), service.WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	created := fixedNow.Add(-time.Hour).Truncate(time.Microsecond)
	stored := entity.MoodRecord{
		ID:            1,
		OwnerUsername: "alice",
		CreatedAt:     created,
		DiaryName:     "Work",
		MoodEmojiID:   "happy",
		FeelingLabel:  "Happy",
		Description:   "standup went fine",
		Rating:        2,
	}
	testCases := []struct {
		Desc         string
		Error        error
		Owner        string
		Changes      *service.EntryChanges
		MockPrepFunc func()
		Check        func(t *testing.T, rec *entity.MoodRecord)
	}{
		{
			Desc:    "only supplied fields change",
			Owner:   "alice",
			Changes: &service.EntryChanges{Rating: ptr(3)},
			MockPrepFunc: func() {
				repo.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(applyTo(stored))
			},
			Check: func(t *testing.T, rec *entity.MoodRecord) {
				assert.Equal(t, 3, rec.Rating)
				assert.Equal(t, "Work", rec.DiaryName)
				assert.Equal(t, "standup went fine", rec.Description)
				assert.Equal(t, created, rec.CreatedAt)
				require.NotNil(t, rec.UpdatedAt)
				assert.Equal(t, fixedNow.Truncate(time.Microsecond), *rec.UpdatedAt)
			},
		},
		{
			Desc:    "blank diary name falls back to default",
			Owner:   "alice",
			Changes: &service.EntryChanges{DiaryName: ptr("  ")},
			MockPrepFunc: func() {
				repo.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(applyTo(stored))
			},
			Check: func(t *testing.T, rec *entity.MoodRecord) {
				assert.Equal(t, entity.DefaultDiaryName, rec.DiaryName)
			},
		},
		{
			Desc:    "wrong owner",
			Error:   errorvalues.ErrWrongOwner,
			Owner:   "bob",
			Changes: &service.EntryChanges{Rating: ptr(1)},
			MockPrepFunc: func() {
				repo.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(applyTo(stored))
			},
		},
		{
			Desc:    "absent record",
			Error:   errorvalues.ErrMoodRecordNotFound,
			Owner:   "alice",
			Changes: &service.EntryChanges{Rating: ptr(1)},
			MockPrepFunc: func() {
				repo.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).Return(nil, errorvalues.ErrMoodRecordNotFound)
			},
		},
		{
			Desc:         "rating out of range",
			Error:        errorvalues.ErrValidation,
			Owner:        "alice",
			Changes:      &service.EntryChanges{Rating: ptr(7)},
			MockPrepFunc: func() {},
		},
		{
			Desc:         "blank feeling label",
			Error:        errorvalues.ErrValidation,
			Owner:        "alice",
			Changes:      &service.EntryChanges{FeelingLabel: ptr(" ")},
			MockPrepFunc: func() {},
		},
		{
			Desc:  "image and path together",
			Error: errorvalues.ErrValidation,
			Owner: "alice",
			Changes: &service.EntryChanges{
				ImagePath: ptr(""),
				Image:     &service.ImageUpload{Data: bytes.NewReader(nil), Ext: ".png"},
			},
			MockPrepFunc: func() {},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rec, err := serv.UpdateEntry(ctx, tc.Owner, 1, tc.Changes)
			if tc.Error != nil {
				assert.ErrorIs(t, err, tc.Error)
				assert.Nil(t, rec)
				return
			}
			require.NoError(t, err)
			tc.Check(t, rec)
		})
	}
}

// flakyFiles fails every Remove while delegating the rest.
type flakyFiles struct {
	*attachment.Manager
	removes int
}

func (f *flakyFiles) Remove(context.Context, string) error {
	f.removes++
	return errors.New("permission denied")
}

func TestUpdateEntryReleaseFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	files := &flakyFiles{Manager: newFiles(t)}
	serv := service.NewMoodService(repo, files)
	ctx := context.Background()

	old, err := files.Stage(ctx, bytes.NewReader([]byte("old")), ".png")
	require.NoError(t, err)
	stored := entity.MoodRecord{ID: 1, OwnerUsername: "alice", MoodEmojiID: "happy", FeelingLabel: "Happy"}
	stored.SetImage(old)

	repo.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(applyTo(stored))
	repo.EXPECT().ImagePathInUse(gomock.Any(), old).Return(false, nil)

	rec, err := serv.UpdateEntry(ctx, "alice", 1, &service.EntryChanges{
		Image: &service.ImageUpload{Data: bytes.NewReader([]byte("new")), Ext: ".png"},
	})
	require.NoError(t, err)
	assert.True(t, rec.HasImage)
	assert.NotEqual(t, old, rec.ImagePath)
	assert.Equal(t, 1, files.removes)
	assert.True(t, files.Exists(old))
}

func TestUpdateEntryKeepsReferencedFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	files := newFiles(t)
	serv := service.NewMoodService(repo, files)
	ctx := context.Background()

	old, err := files.Stage(ctx, bytes.NewReader([]byte("old")), ".png")
	require.NoError(t, err)
	stored := entity.MoodRecord{ID: 1, OwnerUsername: "alice", MoodEmojiID: "happy", FeelingLabel: "Happy"}
	stored.SetImage(old)

	repo.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(applyTo(stored))
	repo.EXPECT().ImagePathInUse(gomock.Any(), old).Return(true, nil)

	rec, err := serv.UpdateEntry(ctx, "alice", 1, &service.EntryChanges{ImagePath: ptr("")})
	require.NoError(t, err)
	assert.False(t, rec.HasImage)
	assert.Empty(t, rec.ImagePath)
	assert.True(t, files.Exists(old))
}

func TestDeleteEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	files := newFiles(t)
	serv := service.NewMoodService(repo, files)
	ctx := context.Background()

	ownerCheck := func(stored entity.MoodRecord) func(context.Context, int64, repository.RecordMutator) (*entity.MoodRecord, error) {
		return func(_ context.Context, _ int64, check repository.RecordMutator) (*entity.MoodRecord, error) {
			rec := stored.Clone()
			if err := check(&rec); err != nil {
				return nil, err
			}
			return &rec, nil
		}
	}

	t.Run("removes attachment after commit", func(t *testing.T) {
		path, err := files.Stage(ctx, bytes.NewReader([]byte("x")), ".jpg")
		require.NoError(t, err)
		stored := entity.MoodRecord{ID: 2, OwnerUsername: "alice"}
		stored.SetImage(path)
		gomock.InOrder(
			repo.EXPECT().Delete(gomock.Any(), int64(2), gomock.Any()).DoAndReturn(ownerCheck(stored)),
			repo.EXPECT().ImagePathInUse(gomock.Any(), path).Return(false, nil),
		)
		assert.NoError(t, serv.DeleteEntry(ctx, "alice", 2))
		assert.False(t, files.Exists(path))
	})
	t.Run("wrong owner keeps everything", func(t *testing.T) {
		path, err := files.Stage(ctx, bytes.NewReader([]byte("x")), ".jpg")
		require.NoError(t, err)
		stored := entity.MoodRecord{ID: 2, OwnerUsername: "alice"}
		stored.SetImage(path)
		repo.EXPECT().Delete(gomock.Any(), int64(2), gomock.Any()).DoAndReturn(ownerCheck(stored))
		assert.ErrorIs(t, serv.DeleteEntry(ctx, "bob", 2), errorvalues.ErrWrongOwner)
		assert.True(t, files.Exists(path))
	})
	t.Run("absent record", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), int64(9), gomock.Any()).Return(nil, errorvalues.ErrMoodRecordNotFound)
		assert.ErrorIs(t, serv.DeleteEntry(ctx, "alice", 9), errorvalues.ErrMoodRecordNotFound)
	})
	t.Run("ensure deleted tolerates absence", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), int64(9), gomock.Any()).Return(nil, errorvalues.ErrMoodRecordNotFound)
		assert.NoError(t, serv.EnsureDeleted(ctx, "alice", 9))
	})
	t.Run("ensure deleted keeps other errors", func(t *testing.T) {
		repo.EXPECT().Delete(gomock.Any(), int64(9), gomock.Any()).Return(nil, errorvalues.StorageError("deleting mood record error", errors.New("db error")))
		assert.ErrorIs(t, serv.EnsureDeleted(ctx, "alice", 9), errorvalues.ErrStorage)
	})
}

func TestListEntriesReturnsSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	serv := service.NewMoodService(repo, newFiles(t))
	updated := fixedNow
	stored := []entity.MoodRecord{{ID: 1, OwnerUsername: "alice", UpdatedAt: &updated}}
	repo.EXPECT().ListByOwner(gomock.Any(), "alice").Return(stored, nil)

	list, err := serv.ListEntries(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	*list[0].UpdatedAt = fixedNow.Add(time.Hour)
	assert.Equal(t, fixedNow, updated)
}

// blockingFiles holds Remove until proceed is closed.
type blockingFiles struct {
	*attachment.Manager
	started chan struct{}
	proceed chan struct{}
}

func (f *blockingFiles) Remove(ctx context.Context, path string) error {
	close(f.started)
	<-f.proceed
	return f.Manager.Remove(ctx, path)
}

func TestCreateEntryWaitsForRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMoodRecordsRepositoryI(ctrl)
	files := &blockingFiles{Manager: newFiles(t), started: make(chan struct{}), proceed: make(chan struct{})}
	serv := service.NewMoodService(repo, files)
	ctx := context.Background()

	path, err := files.Stage(ctx, bytes.NewReader([]byte("img")), ".png")
	require.NoError(t, err)
	deleted := &entity.MoodRecord{ID: 1, OwnerUsername: "alice", MoodEmojiID: "happy", FeelingLabel: "Happy"}
	deleted.SetImage(path)
	repo.EXPECT().Delete(gomock.Any(), int64(1), gomock.Any()).Return(deleted, nil)
	repo.EXPECT().ImagePathInUse(gomock.Any(), path).Return(false, nil)

	deleteErr := make(chan error, 1)
	go func() {
		deleteErr <- serv.DeleteEntry(ctx, "alice", 1)
	}()
	<-files.started

	createErr := make(chan error, 1)
	go func() {
		_, err := serv.CreateEntry(ctx, "alice", &service.CreateEntryRequest{
			MoodEmojiID:  "happy",
			FeelingLabel: "Happy",
			ImagePath:    path,
		})
		createErr <- err
	}()
	select {
	case err := <-createErr:
		t.Fatalf("create finished while the file was being removed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(files.proceed)

	require.NoError(t, <-deleteErr)
	assert.ErrorIs(t, <-createErr, errorvalues.ErrAttachment)
	assert.False(t, files.Exists(path))
}
