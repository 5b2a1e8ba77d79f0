// Package moodkit wires the account store, the mood journal and attachment files
// into one Core that a host application opens at startup and closes on exit.
package moodkit

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/limbo/moodkit/internal/attachment"
	"github.com/limbo/moodkit/internal/logging"
	"github.com/limbo/moodkit/internal/notify"
	"github.com/limbo/moodkit/internal/repository"
	"github.com/limbo/moodkit/internal/repository/sqliterepo"
	"github.com/limbo/moodkit/internal/service"
	"github.com/limbo/moodkit/internal/worker"
	"github.com/limbo/moodkit/pkg/cleanup"
	"github.com/limbo/moodkit/pkg/config"
	"github.com/limbo/moodkit/pkg/entity"
	"github.com/limbo/moodkit/pkg/projection"
)

type (
	RegisterRequest    = service.RegisterRequest
	CreateEntryRequest = service.CreateEntryRequest
	EntryChanges       = service.EntryChanges
	ImageUpload        = service.ImageUpload
	Event              = notify.Event
)

type Core struct {
	Accounts service.AccountServiceI
	Journal  service.MoodServiceI

	broker   *notify.Broker
	jobs     *cleanup.Registry
	logger   *slog.Logger
	location *time.Location
}

type Option func(*Core)

// WithLocation sets the time zone used for calendar labels in projections.
func WithLocation(loc *time.Location) Option {
	return func(c *Core) {
		c.location = loc
	}
}

// Open prepares the data directory, the database and the attachment store.
// Everything opened so far is released when a later step fails.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Core, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	logger, logCloser := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogPath(),
		Console: true,
	})
	c := &Core{
		broker:   notify.NewBroker(),
		jobs:     cleanup.New(logger),
		logger:   logger,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.jobs.Register(&cleanup.Job{Name: "closing log file", F: logCloser.Close})
	c.jobs.Register(&cleanup.Job{Name: "closing event broker", F: c.broker.Close})

	if err := c.open(ctx, cfg); err != nil {
		logger.Error("opening moodkit failed", slog.String("error", err.Error()))
		c.jobs.CleanUp()
		return nil, err
	}
	return c, nil
}

func (c *Core) open(ctx context.Context, cfg *config.Config) error {
	pool := worker.New(cfg.Workers)
	files, err := attachment.NewManager(cfg.AttachmentsPath(), pool)
	if err != nil {
		return err
	}
	ctx = logging.WithLogger(ctx, c.logger)
	if swept, err := files.SweepTemp(ctx); err != nil {
		c.logger.Warn("sweeping staging files failed", slog.String("error", err.Error()))
	} else if swept > 0 {
		c.logger.Info("staging files left by an interrupted write removed", slog.Int("count", swept))
	}

	var (
		accountsRepo repository.AccountsRepositoryI
		moodRepo     repository.MoodRecordsRepositoryI
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pgcfg := &repository.PGCfg{
			Address:  cfg.PostgresAddress,
			Username: cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DB:       cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSLMode,
		}
		if cfg.MigrationsDir != "" {
			if err := repository.Migrate(pgcfg, cfg.MigrationsDir); err != nil {
				return err
			}
			c.logger.Info("migrations applied", slog.String("dir", cfg.MigrationsDir))
		}
		conn, err := repository.Connect(ctx, pgcfg, c.jobs)
		if err != nil {
			return err
		}
		accountsRepo = repository.NewAccountsRepo(conn)
		moodRepo = repository.NewMoodRecordsRepo(conn)
		c.logger.Info("database opened", slog.String("driver", cfg.DBDriver), slog.String("address", cfg.PostgresAddress))
	default:
		db, err := sqliterepo.Open(ctx, cfg.DBPath())
		if err != nil {
			return err
		}
		c.jobs.Register(&cleanup.Job{Name: "closing sqlite database", F: db.Close})
		accountsRepo = sqliterepo.NewAccountsRepo(db)
		moodRepo = sqliterepo.NewMoodRecordsRepo(db)
		c.logger.Info("database opened", slog.String("driver", cfg.DBDriver), slog.String("path", cfg.DBPath()))
	}

	c.Accounts = service.NewAccountService(accountsRepo,
		service.WithAccountPool(pool),
		service.WithAccountLogger(c.logger),
	)
	c.Journal = service.NewMoodService(moodRepo, files,
		service.WithPublisher(c.broker),
		service.WithMoodLogger(c.logger),
	)
	return nil
}

// Subscribe delivers owner's change events until the returned func is called.
// A slow reader misses events and should Refresh.
func (c *Core) Subscribe(owner string) (<-chan Event, func()) {
	return c.broker.Subscribe(owner, 0)
}

func (c *Core) Refresh(ctx context.Context, owner string) ([]entity.MoodRecord, error) {
	return c.Journal.Refresh(ctx, owner)
}

// Project reads owner's journal and builds the display snapshot.
func (c *Core) Project(ctx context.Context, owner string) (projection.Snapshot, error) {
	records, err := c.Journal.Refresh(ctx, owner)
	if err != nil {
		return projection.Snapshot{}, err
	}
	return projection.Build(owner, records, projection.Options{
		Location:       c.location,
		ImageAvailable: c.Journal.AttachmentAvailable,
	}), nil
}

func (c *Core) Close() error {
	c.logger.Info("closing moodkit")
	return c.jobs.CleanUp()
}
