package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/pkg/entity"
)

const accountsEmailConstraint = "accounts_email_key"

type AccountsRepository struct {
	conn PgConnection
}

func NewAccountsRepo(conn PgConnection) *AccountsRepository {
	return &AccountsRepository{
		conn: conn,
	}
}

func (ar *AccountsRepository) Create(ctx context.Context, account *entity.Account) error {
	if account == nil {
		return errors.New("account is nil")
	}
	_, err := ar.conn.Exec(ctx, `INSERT INTO accounts (username, email, password_hash) VALUES ($1, $2, $3);`,
		account.Username,
		account.Email,
		account.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				if pgErr.ConstraintName == accountsEmailConstraint {
					return errorvalues.ErrDuplicateEmail
				}
				return errorvalues.ErrDuplicateUsername
			}
		}
		return errorvalues.StorageError("creating account db error", err)
	}
	return nil
}

func (ar *AccountsRepository) FindByName(ctx context.Context, username string) (*entity.Account, error) {
	var account entity.Account
	row := ar.conn.QueryRow(ctx, `SELECT username, email, password_hash FROM accounts WHERE username = $1;`, username)
	if err := row.Scan(&account.Username, &account.Email, &account.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrAccountNotFound
		}
		return nil, errorvalues.StorageError("searching account by username error", err)
	}
	return &account, nil
}

func (ar *AccountsRepository) ExistsByName(ctx context.Context, username string) (bool, error) {
	var exists bool
	row := ar.conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1);`, username)
	if err := row.Scan(&exists); err != nil {
		return false, errorvalues.StorageError("checking username error", err)
	}
	return exists, nil
}

func (ar *AccountsRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	row := ar.conn.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1);`, email)
	if err := row.Scan(&exists); err != nil {
		return false, errorvalues.StorageError("checking email error", err)
	}
	return exists, nil
}
