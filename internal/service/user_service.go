package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
	"github.com/Zapzatron/ToDo-List-API/internal/store"
)

// UserService registers users and checks their credentials.
type UserService interface {
	// Register creates a user with a hashed password.
	// Returns ErrDuplicateUser if the username is taken.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// FindByUsername returns the user with exactly this username.
	// Returns store.ErrUserNotFound if there is none.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID int64) (*domain.User, error)

	// VerifyCredentials reports whether password matches the stored hash for
	// username. A missing user or wrong password returns (nil, false, nil);
	// errors are reserved for failures of the store itself.
	VerifyCredentials(ctx context.Context, username, password string) (*domain.User, bool, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	passwords auth.PasswordManager
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	passwords auth.PasswordManager,
	logger *slog.Logger,
) *UserServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		passwords: passwords,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.
// A clash found by the existence check and one reported by the store's
// unique constraint both return ErrDuplicateUser.
func (s *UserServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, password)
	if err != nil {
		log.Debug("invalid registration input",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, err
	}

	existing, err := s.userStore.GetByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		log.Debug("attempted to register existing username",
			slog.String("username", username))
		return nil, ErrDuplicateUser
	case err != nil && !errors.Is(err, store.ErrUserNotFound):
		log.Error("failed to check for existing user",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		log.Error("failed to hash password",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.HashedPassword = hash

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("username taken concurrently",
				slog.String("username", username))
			return nil, ErrDuplicateUser
		}
		log.Error("failed to save user",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user.Password = ""

	log.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return user, nil
}

// FindByUsername implements UserService.
func (s *UserServiceImpl) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user by username",
				slog.String("error", err.Error()),
				slog.String("username", username))
		}
		return nil, fmt.Errorf("failed to retrieve user by username: %w", err)
	}
	return user, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// VerifyCredentials implements UserService.
func (s *UserServiceImpl) VerifyCredentials(
	ctx context.Context,
	username, password string,
) (*domain.User, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown username", slog.String("username", username))
			return nil, false, nil
		}
		log.Error("failed to load user for login",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, false, fmt.Errorf("failed to verify credentials: %w", err)
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Warn("stored password hash is unusable",
				slog.String("error", err.Error()),
				slog.Int64("user_id", user.ID))
		}
		log.Debug("login with wrong password", slog.String("username", username))
		return nil, false, nil
	}

	return user, true, nil
}
