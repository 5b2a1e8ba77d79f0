package repository

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
	"github.com/pressly/goose"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
)

// Migrate applies the pending goose migrations from dir. The connection is
// closed before returning; the repositories use their own pool.
func Migrate(cfg DBConfig, dir string) error {
	if cfg == nil {
		return errors.New("db config is nil")
	}
	db, err := sql.Open("postgres", cfg.ConnString())
	if err != nil {
		return errorvalues.StorageError("opening migration connection", err)
	}
	defer db.Close()
	if err = goose.SetDialect("postgres"); err != nil {
		return errorvalues.StorageError("setting migration dialect", err)
	}
	if err = goose.Up(db, dir); err != nil {
		return errorvalues.StorageError("applying migrations", err)
	}
	return nil
}
