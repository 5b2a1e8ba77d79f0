package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/internal/repository"
	"github.com/limbo/moodkit/pkg/entity"
)

type AccountsRepository struct {
	db *sql.DB
}

var _ repository.AccountsRepositoryI = (*AccountsRepository)(nil)

func NewAccountsRepo(db *sql.DB) *AccountsRepository {
	return &AccountsRepository{db: db}
}

func (ar *AccountsRepository) Create(ctx context.Context, account *entity.Account) error {
	if account == nil {
		return errors.New("account is nil")
	}
	_, err := ar.db.ExecContext(ctx, `INSERT INTO accounts (username, email, password_hash) VALUES (?, ?, ?);`,
		account.Username,
		account.Email,
		account.PasswordHash,
	)
	if err != nil {
		if kind, msg := classify(err); kind == uniqueConstraint {
			// "UNIQUE constraint failed: accounts.email"
			if strings.Contains(msg, "accounts.email") {
				return errorvalues.ErrDuplicateEmail
			}
			return errorvalues.ErrDuplicateUsername
		}
		return errorvalues.StorageError("creating account db error", err)
	}
	return nil
}

func (ar *AccountsRepository) FindByName(ctx context.Context, username string) (*entity.Account, error) {
	var account entity.Account
	row := ar.db.QueryRowContext(ctx, `SELECT username, email, password_hash FROM accounts WHERE username = ?;`, username)
	if err := row.Scan(&account.Username, &account.Email, &account.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorvalues.ErrAccountNotFound
		}
		return nil, errorvalues.StorageError("searching account by username error", err)
	}
	return &account, nil
}

func (ar *AccountsRepository) ExistsByName(ctx context.Context, username string) (bool, error) {
	return ar.exists(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = ?);`, username)
}

func (ar *AccountsRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return ar.exists(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = ?);`, email)
}

func (ar *AccountsRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := ar.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, errorvalues.StorageError("checking account existence error", err)
	}
	return exists, nil
}
