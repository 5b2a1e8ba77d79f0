package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	errorvalues "github.com/limbo/moodkit/internal/error_values"
	"github.com/limbo/moodkit/internal/logging"
	"github.com/limbo/moodkit/internal/repository"
	"github.com/limbo/moodkit/internal/worker"
	"github.com/limbo/moodkit/pkg/entity"
)

// HashCost is the bcrypt work factor used for every stored password.
const HashCost = 11

const maxPasswordBytes = 72

type AccountService struct {
	repo   repository.AccountsRepositoryI
	pool   *worker.Pool
	cost   int
	logger *slog.Logger
}

type AccountOption func(*AccountService)

// WithHashCost overrides HashCost. Meant for tests.
func WithHashCost(cost int) AccountOption {
	return func(as *AccountService) {
		as.cost = cost
	}
}

func WithAccountPool(pool *worker.Pool) AccountOption {
	return func(as *AccountService) {
		as.pool = pool
	}
}

func WithAccountLogger(logger *slog.Logger) AccountOption {
	return func(as *AccountService) {
		as.logger = logger
	}
}

func NewAccountService(accountsRepo repository.AccountsRepositoryI, opts ...AccountOption) *AccountService {
	if accountsRepo == nil {
		panic("provided nil accountsRepo")
	}
	InitValidator()
	as := &AccountService{
		repo: accountsRepo,
		cost: HashCost,
	}
	for _, opt := range opts {
		opt(as)
	}
	if as.pool == nil {
		as.pool = worker.New(worker.DefaultSize)
	}
	if as.logger == nil {
		as.logger = slog.Default()
	}
	return as
}

func (as *AccountService) Register(ctx context.Context, req *RegisterRequest) (*entity.Account, error) {
	if req == nil {
		return nil, errors.Join(errorvalues.ErrValidation, errors.New("register request is nil"))
	}
	normalized := *req
	normalized.Username = strings.TrimSpace(req.Username)
	normalized.Email = strings.TrimSpace(req.Email)
	ctx, logger := logging.Operation(ctx, as.logger, "register_account", slog.String("username", normalized.Username))

	if err := validate.Struct(normalized); err != nil {
		return nil, validationError(err)
	}
	taken, err := as.repo.ExistsByName(ctx, normalized.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorvalues.ErrDuplicateUsername
	}
	taken, err = as.repo.ExistsByEmail(ctx, normalized.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errorvalues.ErrDuplicateEmail
	}

	passwordHash, err := worker.Call(ctx, as.pool, func() ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(normalized.Password), as.cost)
	})
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errors.Join(errorvalues.ErrValidation, err)
		}
		return nil, errors.New("hashing password error: " + err.Error())
	}
	account := entity.Account{
		Username:     normalized.Username,
		Email:        normalized.Email,
		PasswordHash: string(passwordHash),
	}
	if err = as.repo.Create(ctx, &account); err != nil {
		return nil, err
	}
	logger.Info("account registered")
	return &account, nil
}

func (as *AccountService) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return as.repo.FindByName(ctx, strings.TrimSpace(username))
}

func (as *AccountService) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	_, ok, err := as.verify(ctx, username, password)
	return ok, err
}

func (as *AccountService) Login(ctx context.Context, username, password string) (*entity.Account, error) {
	account, ok, err := as.verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorvalues.ErrWrongCredentials
	}
	return account, nil
}

func (as *AccountService) verify(ctx context.Context, username, password string) (*entity.Account, bool, error) {
	ctx, logger := logging.Operation(ctx, as.logger, "verify_credentials", slog.String("username", username))
	account, err := as.repo.FindByName(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, false, err
	}
	// bcrypt ignores bytes past the limit, so a longer password can't be the stored one
	if len(password) > maxPasswordBytes {
		return account, false, nil
	}
	err = as.pool.Do(ctx, func() error {
		return bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	})
	switch {
	case err == nil:
		return account, true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return account, false, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, false, err
	}
	logger.Error("stored password hash is unreadable", slog.String("error", err.Error()))
	return nil, false, fmt.Errorf("%w: %w", errorvalues.ErrCorruptCredential, err)
}
