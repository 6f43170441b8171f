package services

import (
	"context"
	"testing"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/services/user/domain"
	"github.com/ghuser/auctionhouse/services/user/infrastructure/persistence/memory"
)

func newService() *UserService {
	return NewUserService(memory.NewUserRepository(), clock.NewMock(), logger.Discard())
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	u, err := svc.Register(ctx, "alice", "Alice@Example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", u.Email)

	got, err := svc.Authenticate(ctx, "ALICE@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	byID, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
}

func TestUserService_RegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ALICE", "other@example.com", "s3cret-pass")
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = svc.Register(ctx, "bob", "alice@EXAMPLE.com", "s3cret-pass")
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = svc.Register(ctx, "bob", "bob@example.com", "short")
	require.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestUserService_AuthenticateFailures(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	_, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "alice@example.com", "wrong-pass"},
		{"unknown email", "nobody@example.com", "s3cret-pass"},
		{"malformed email", "alice", "s3cret-pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}

	_, err = svc.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
