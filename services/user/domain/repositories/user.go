package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/user/domain/models"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Save inserts u. Returns domain.ErrUserAlreadyExists when the username
	// or email is taken (case-insensitive).
	Save(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByEmail looks up a user by normalized email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
