package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/database"
	"github.com/ghuser/auctionhouse/services/user/domain"
	"github.com/ghuser/auctionhouse/services/user/domain/models"
	"github.com/ghuser/auctionhouse/services/user/infrastructure/persistence/postgres/db"
)

const defaultTimeout = 5 * time.Second

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewUserRepository(database *database.Database, timeout time.Duration) *UserRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &UserRepository{db: database, timeout: timeout}
}

// Save inserts a new user. Case-insensitive unique indexes on username and
// email turn duplicates into ErrUserAlreadyExists.
func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := db.New(r.db.DB()).InsertUser(ctx, db.InsertUserParams{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: string(u.PasswordHash),
		CreatedAt:    u.CreatedAt,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row, err := db.New(r.db.DB()).GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return rowToUser(row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	row, err := db.New(r.db.DB()).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return rowToUser(row), nil
}

func rowToUser(row db.AccountUser) *models.User {
	return &models.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: []byte(row.PasswordHash),
		CreatedAt:    row.CreatedAt,
	}
}
