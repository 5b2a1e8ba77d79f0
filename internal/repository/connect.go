package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/pkg/cleanup"
)

// Connect opens a pool shared by both repositories and registers its closing.
func Connect(ctx context.Context, cfg DBConfig, jobs *cleanup.Registry) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, errors.New("db config is nil")
	}
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, errorvalues.StorageError("creating pgxpool", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errorvalues.StorageError("pinging pgxpool", err)
	}
	if jobs != nil {
		jobs.Register(&cleanup.Job{
			Name: "closing pgxpool",
			F: func() error {
				pool.Close()
				return nil
			},
		})
	}
	return pool, nil
}
