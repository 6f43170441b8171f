package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/services/user/domain"
	"github.com/ghuser/auctionhouse/services/user/domain/models"
	"github.com/ghuser/auctionhouse/services/user/domain/repositories"
)

// UserService handles registration and credential checks.
type UserService struct {
	repo  repositories.UserRepository
	clock clock.Clock
	log   logger.Logger
}

func NewUserService(repo repositories.UserRepository, clk clock.Clock, log logger.Logger) *UserService {
	return &UserService{repo: repo, clock: clk, log: log}
}

// Register creates an account. Returns ErrInvalidUser for bad input and
// ErrUserAlreadyExists when the username or email is taken.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	u, err := models.NewUser(username, email, password, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate returns the user owning email if password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !u.CheckPassword(password) {
		s.log.WarnContext(ctx, "failed login attempt", "user_id", u.ID)
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
