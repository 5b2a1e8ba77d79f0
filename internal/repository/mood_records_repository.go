package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/pkg/entity"
)

const moodRecordColumns = `id, owner_username, created_at, updated_at, diary_name, mood_emoji_id, feeling_label, description, rating, has_image, image_path`

type MoodRecordsRepository struct {
	conn PgConnection
}

func NewMoodRecordsRepo(conn PgConnection) *MoodRecordsRepository {
	return &MoodRecordsRepository{
		conn: conn,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMoodRecord(row rowScanner) (*entity.MoodRecord, error) {
	var rec entity.MoodRecord
	err := row.Scan(
		&rec.ID,
		&rec.OwnerUsername,
		&rec.CreatedAt,
		&rec.UpdatedAt,
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
	// pgx decodes timestamptz in the local zone
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.UpdatedAt != nil {
		t := rec.UpdatedAt.UTC()
		rec.UpdatedAt = &t
	}
	return &rec, nil
}

// mapWriteError translates constraint violations raised on insert/update.
func mapWriteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		// Unique violation, only image_path is unique
		case "23505":
			return errorvalues.ErrAttachmentInUse
		// Check violation
		case "23514":
			return errors.Join(errorvalues.ErrValidation, errors.New(pgErr.ConstraintName+" check failed"))
		}
	}
	return errorvalues.StorageError(msg, err)
}

func (mr *MoodRecordsRepository) Create(ctx context.Context, rec *entity.MoodRecord) (int64, error) {
	if rec == nil {
		return 0, errors.New("mood record is nil")
	}
	var id int64
	row := mr.conn.QueryRow(ctx, `INSERT INTO mood_records
		(owner_username, created_at, updated_at, diary_name, mood_emoji_id, feeling_label, description, rating, has_image, image_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id;`,
		rec.OwnerUsername,
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.DiaryName,
		rec.MoodEmojiID,
		rec.FeelingLabel,
		rec.Description,
		rec.Rating,
		rec.HasImage,
		rec.ImagePath,
	)
	if err := row.Scan(&id); err != nil {
		return 0, mapWriteError("creating mood record db error", err)
	}
	return id, nil
}

func (mr *MoodRecordsRepository) GetByID(ctx context.Context, id int64) (*entity.MoodRecord, error) {
	rec, err := scanMoodRecord(mr.conn.QueryRow(ctx, `SELECT `+moodRecordColumns+` FROM mood_records WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrMoodRecordNotFound
		}
		return nil, errorvalues.StorageError("getting mood record by id error", err)
	}
	return rec, nil
}

func (mr *MoodRecordsRepository) ListByOwner(ctx context.Context, owner string) ([]entity.MoodRecord, error) {
	records := make([]entity.MoodRecord, 0)
	rows, err := mr.conn.Query(ctx, `SELECT `+moodRecordColumns+` FROM mood_records
		WHERE owner_username = $1 ORDER BY created_at DESC, id DESC;`, owner)
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

// lockByID loads the row inside tx and holds a row lock until the tx ends.
func lockByID(ctx context.Context, tx pgx.Tx, id int64) (*entity.MoodRecord, error) {
	rec, err := scanMoodRecord(tx.QueryRow(ctx, `SELECT `+moodRecordColumns+` FROM mood_records WHERE id = $1 FOR UPDATE;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrMoodRecordNotFound
		}
		return nil, errorvalues.StorageError("reloading mood record error", err)
	}
	return rec, nil
}

func (mr *MoodRecordsRepository) Update(ctx context.Context, id int64, apply RecordMutator) (*entity.MoodRecord, error) {
	tx, err := mr.conn.Begin(ctx)
	if err != nil {
		return nil, errorvalues.StorageError("beginning transaction error", err)
	}
	rec, err := lockByID(ctx, tx, id)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	if err = apply(rec); err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE mood_records SET updated_at = $1, diary_name = $2, mood_emoji_id = $3, feeling_label = $4,
		description = $5, rating = $6, has_image = $7, image_path = $8 WHERE id = $9;`,
		rec.UpdatedAt,
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
		tx.Rollback(ctx)
		return nil, mapWriteError("updating mood record error", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errorvalues.StorageError("committing mood record update error", err)
	}
	return rec, nil
}

func (mr *MoodRecordsRepository) Delete(ctx context.Context, id int64, check RecordMutator) (*entity.MoodRecord, error) {
	tx, err := mr.conn.Begin(ctx)
	if err != nil {
		return nil, errorvalues.StorageError("beginning transaction error", err)
	}
	rec, err := lockByID(ctx, tx, id)
	if err != nil {
		tx.Rollback(ctx)
		return nil, err
	}
	if check != nil {
		if err = check(rec); err != nil {
			tx.Rollback(ctx)
			return nil, err
		}
	}
	ct, err := tx.Exec(ctx, `DELETE FROM mood_records WHERE id = $1;`, id)
	if err != nil {
		tx.Rollback(ctx)
		return nil, errorvalues.StorageError("deleting mood record error", err)
	}
	if ct.RowsAffected() == 0 {
		tx.Rollback(ctx)
		return nil, errorvalues.ErrMoodRecordNotFound
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, errorvalues.StorageError("committing mood record deletion error", err)
	}
	return rec, nil
}

func (mr *MoodRecordsRepository) ImagePathInUse(ctx context.Context, path string) (bool, error) {
	var inUse bool
	row := mr.conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM mood_records WHERE has_image AND image_path = $1);`, path)
	if err := row.Scan(&inUse); err != nil {
		return false, errorvalues.StorageError("checking image path error", err)
	}
	return inUse, nil
}

func (mr *MoodRecordsRepository) ListImagePaths(ctx context.Context) ([]string, error) {
	paths := make([]string, 0)
	rows, err := mr.conn.Query(ctx, `SELECT image_path FROM mood_records WHERE has_image;`)
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
