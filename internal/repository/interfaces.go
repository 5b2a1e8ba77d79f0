package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/limbo/moodkit/pkg/entity"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type AccountsRepositoryI interface {
	// Creates new account. Translates unique violations into ErrDuplicateUsername / ErrDuplicateEmail
	Create(ctx context.Context, account *entity.Account) error
	// Looks up account by username (exact match). Can be used for login
	FindByName(ctx context.Context, username string) (*entity.Account, error)
	// Inspects if username is taken
	ExistsByName(ctx context.Context, username string) (bool, error)
	// Inspects if email is taken
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RecordMutator is applied to the freshly loaded row inside the storage transaction.
// Returning an error rolls the transaction back and is passed through unchanged.
type RecordMutator func(rec *entity.MoodRecord) error

type MoodRecordsRepositoryI interface {
	// Inserts new record and returns generated id. ID in rec is ignored
	Create(ctx context.Context, rec *entity.MoodRecord) (int64, error)
	// Searches record with given id
	GetByID(ctx context.Context, id int64) (*entity.MoodRecord, error)
	// Lists records owned by owner, newest first (created_at desc, id desc)
	ListByOwner(ctx context.Context, owner string) ([]entity.MoodRecord, error)
	// Reloads record by id, applies mutator and writes the result back atomically
	Update(ctx context.Context, id int64, apply RecordMutator) (*entity.MoodRecord, error)
	// Reloads record by id, runs check and deletes it atomically. Returns the deleted row
	Delete(ctx context.Context, id int64, check RecordMutator) (*entity.MoodRecord, error)
	// Inspects if any committed record references the file
	ImagePathInUse(ctx context.Context, path string) (bool, error)
	// Lists every referenced attachment path
	ListImagePaths(ctx context.Context) ([]string, error)
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
	// Empty leaves the driver default
	SSLMode string
}

func (pgcfg *PGCfg) ConnString() string {
	connStr := fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
	if pgcfg.SSLMode != "" {
		connStr += "?sslmode=" + pgcfg.SSLMode
	}
	return connStr
}
