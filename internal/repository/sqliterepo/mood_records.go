package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/internal/repository"
	"github.com/limbo/moodkit/pkg/entity"
)

const moodRecordColumns = `id, owner_username, created_at, updated_at, diary_name, mood_emoji_id, feeling_label, description, rating, has_image, image_path`

// Timestamps are stored as UTC unix microseconds.
func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func nullableMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMicros(*t), Valid: true}
}

type MoodRecordsRepository struct {
	db *sql.DB
}

var _ repository.MoodRecordsRepositoryI = (*MoodRecordsRepository)(nil)

func NewMoodRecordsRepo(db *sql.DB) *MoodRecordsRepository {
	return &MoodRecordsRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMoodRecord(row rowScanner) (*entity.MoodRecord, error) {
	var (
		rec       entity.MoodRecord
		createdAt int64
		updatedAt sql.NullInt64
	)
	err := row.Scan(
		&rec.ID,
		&rec.OwnerUsername,
		&createdAt,
		&updatedAt,
		&rec.DiaryName,
		&rec.MoodEmojiID,
		&rec.FeelingLabel,
		&rec.Description,
		&rec.Rating,
		&rec.HasImage,
		&rec.ImagePath,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = fromMicros(createdAt)
	if updatedAt.Valid {
		t := fromMicros(updatedAt.Int64)
		rec.UpdatedAt = &t
	}
	return &rec, nil
}

func mapWriteError(msg string, err error) error {
	switch kind, text := classify(err); kind {
	// only image_path is unique on this table
	case uniqueConstraint:
		return errorvalues.ErrAttachmentInUse
	case checkConstraint:
		return checkViolation(text)
	}
	return errorvalues.StorageError(msg, err)
}

func (mr *MoodRecordsRepository) Create(ctx context.Context, rec *entity.MoodRecord) (int64, error) {
	if rec == nil {
		return 0, errors.New("mood record is nil")
	}
	res, err := mr.db.ExecContext(ctx, `INSERT INTO mood_records
		(owner_username, created_at, updated_at, diary_name, mood_emoji_id, feeling_label, description, rating, has_image, image_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.OwnerUsername,
		toMicros(rec.CreatedAt),
		nullableMicros(rec.UpdatedAt),
		rec.DiaryName,
		rec.MoodEmojiID,
		rec.FeelingLabel,
		rec.Description,
		rec.Rating,
		rec.HasImage,
		rec.ImagePath,
	)
	if err != nil {
		return 0, mapWriteError("creating mood record db error", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errorvalues.StorageError("reading generated id error", err)
	}
	return id, nil
}

func (mr *MoodRecordsRepository) GetByID(ctx context.Context, id int64) (*entity.MoodRecord, error) {
	return getByID(ctx, mr.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByID(ctx context.Context, q queryRower, id int64) (*entity.MoodRecord, error) {
	rec, err := scanMoodRecord(q.QueryRowContext(ctx, `SELECT `+moodRecordColumns+` FROM mood_records WHERE id = ?;`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorvalues.ErrMoodRecordNotFound
		}
		return nil, errorvalues.StorageError("getting mood record by id error", err)
	}
	return rec, nil
}

func (mr *MoodRecordsRepository) ListByOwner(ctx context.Context, owner string) ([]entity.MoodRecord, error) {
	records := make([]entity.MoodRecord, 0)
	rows, err := mr.db.QueryContext(ctx, `SELECT `+moodRecordColumns+` FROM mood_records
		WHERE owner_username = ? ORDER BY created_at DESC, id DESC;`, owner)
	if err != nil {
		return nil, errorvalues.StorageError("listing mood records error", err)
	}
	defer rows.Close()
	for rows.Next() {
		rec, err := scanMoodRecord(rows)
		if err != nil {
			return nil, errorvalues.StorageError("unmarshalling mood record error", err)
		}
		records = append(records, *rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errorvalues.StorageError("unexpected error after scanning", err)
	}
	return records, nil
}

func (mr *MoodRecordsRepository) Update(ctx context.Context, id int64, apply repository.RecordMutator) (*entity.MoodRecord, error) {
	tx, err := mr.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errorvalues.StorageError("beginning transaction error", err)
	}
	defer tx.Rollback()

	rec, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err = apply(rec); err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE mood_records SET updated_at = ?, diary_name = ?, mood_emoji_id = ?, feeling_label = ?,
		description = ?, rating = ?, has_image = ?, image_path = ? WHERE id = ?;`,
		nullableMicros(rec.UpdatedAt),
		rec.DiaryName,
		rec.MoodEmojiID,
		rec.FeelingLabel,
		rec.Description,
		rec.Rating,
		rec.HasImage,
		rec.ImagePath,
		id,
	)
	if err != nil {
		return nil, mapWriteError("updating mood record error", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, errorvalues.StorageError("committing mood record update error", err)
	}
	return rec, nil
}

func (mr *MoodRecordsRepository) Delete(ctx context.Context, id int64, check repository.RecordMutator) (*entity.MoodRecord, error) {
	tx, err := mr.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errorvalues.StorageError("beginning transaction error", err)
	}
	defer tx.Rollback()

	rec, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err = check(rec); err != nil {
			return nil, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM mood_records WHERE id = ?;`, id)
	if err != nil {
		return nil, errorvalues.StorageError("deleting mood record error", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errorvalues.ErrMoodRecordNotFound
	}
	if err = tx.Commit(); err != nil {
		return nil, errorvalues.StorageError("committing mood record deletion error", err)
	}
	return rec, nil
}

func (mr *MoodRecordsRepository) ImagePathInUse(ctx context.Context, path string) (bool, error) {
	var inUse bool
	row := mr.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM mood_records WHERE has_image AND image_path = ?);`, path)
	if err := row.Scan(&inUse); err != nil {
		return false, errorvalues.StorageError("checking image path error", err)
	}
	return inUse, nil
}

func (mr *MoodRecordsRepository) ListImagePaths(ctx context.Context) ([]string, error) {
	paths := make([]string, 0)
	rows, err := mr.db.QueryContext(ctx, `SELECT image_path FROM mood_records WHERE has_image;`)
	if err != nil {
		return nil, errorvalues.StorageError("listing image paths error", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			return nil, errorvalues.StorageError("unmarshalling image path error", err)
		}
		paths = append(paths, p)
	}
	if err = rows.Err(); err != nil {
		return nil, errorvalues.StorageError("unexpected error after scanning", err)
	}
	return paths, nil
}
