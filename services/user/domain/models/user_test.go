package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ghuser/auctionhouse/services/user/domain"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	u, err := NewUser("  alice_01 ", " Alice@Example.com ", "correct horse", now)
	require.NoError(t, err)
	require.Equal(t, "alice_01", u.Username)
	require.Equal(t, "alice@example.com", u.Email)
	require.NotEqual(t, []byte("correct horse"), u.PasswordHash)
	require.True(t, u.CheckPassword("correct horse"))
	require.False(t, u.CheckPassword("wrong horse"))

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "al", "a@example.com", "password1"},
		{"long username", strings.Repeat("a", 51), "a@example.com", "password1"},
		{"username with space", "al ice", "a@example.com", "password1"},
		{"bad email", "alice", "not-an-email", "password1"},
		{"display name email", "alice", "Alice <a@example.com>", "password1"},
		{"short password", "alice", "a@example.com", "short"},
		{"long password", "alice", "a@example.com", strings.Repeat("p", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.username, tt.email, tt.password, now)
			require.ErrorIs(t, err, domain.ErrInvalidUser)
		})
	}
}
