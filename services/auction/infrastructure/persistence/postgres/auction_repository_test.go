package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/auctionhouse/pkg/database"
	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/migrator"
	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/postgres/db"
)

func TestStoreErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"conflict passes through", domain.ErrConflict, domain.ErrConflict},
		{"not found passes through", domain.ErrAuctionNotFound, domain.ErrAuctionNotFound},
		{"deadline is unavailable", fmt.Errorf("query: %w", context.DeadlineExceeded), domain.ErrStoreUnavailable},
		{"serialization failure is conflict", &pgconn.PgError{Code: database.CodeSerializationFailed}, domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, storeErr("op", tt.err), tt.want)
		})
	}

	t.Run("other errors stay generic", func(t *testing.T) {
		err := storeErr("op", errors.New("syntax error"))
		require.NotErrorIs(t, err, domain.ErrStoreUnavailable)
		require.NotErrorIs(t, err, domain.ErrConflict)
	})
}

func TestRowToAuction(t *testing.T) {
	bidder := uuid.New()
	row := db.AuctionAuction{
		ID:                    uuid.New(),
		ItemName:              "Lamp",
		Description:           "Brass",
		StartingBid:           decimal.RequireFromString("10.00"),
		CurrentBid:            decimal.RequireFromString("12.50"),
		HighestBidderID:       uuid.NullUUID{UUID: bidder, Valid: true},
		HighestBidderUsername: sql.NullString{String: "alice", Valid: true},
		SellerID:              uuid.New(),
		SellerUsername:        "seller",
		ClosingTime:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		BidCount:              1,
		Version:               3,
	}

	a, err := rowToAuction(row)
	require.NoError(t, err)
	require.Equal(t, "12.50", a.CurrentBid.String())
	require.Equal(t, "alice", a.HighestBidder.Username)
	require.Equal(t, bidder, a.HighestBidder.ID)
	require.Equal(t, 1, a.BidCount)
	require.Equal(t, int64(3), a.Version)

	row.HighestBidderID = uuid.NullUUID{}
	a, err = rowToAuction(row)
	require.NoError(t, err)
	require.Nil(t, a.HighestBidder)
}

// Integration test, skipped unless DATABASE_URL is set.
func TestAuctionRepositoryIntegration(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}
	ctx := context.Background()

	require.NoError(t, migrator.RunMigrations(dbURL, os.DirFS("../../../../../migrations/auction"), "goose_auction_versions"))

	pool, err := database.NewPool(ctx, dbURL, logger.Discard())
	require.NoError(t, err)
	defer pool.Close()

	repo := NewAuctionRepository(pool, nil, time.Second)
	now := time.Now().UTC().Truncate(time.Microsecond)
	seller := models.UserRef{ID: uuid.New(), Username: "seller"}
	alice := models.UserRef{ID: uuid.New(), Username: "alice"}

	a, err := models.NewAuction(seller, "Lamp", "Brass lamp", models.MustParseMoney("10"), now.Add(time.Hour), now)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	first, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)

	require.NoError(t, first.PlaceBid(alice, models.MustParseMoney("15.25"), now))
	require.NoError(t, repo.Update(ctx, first))

	require.NoError(t, stale.PlaceBid(alice, models.MustParseMoney("20"), now))
	require.ErrorIs(t, repo.Update(ctx, stale), domain.ErrConflict)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "15.25", got.CurrentBid.String())
	require.Len(t, got.Bids, 1)
	require.NoError(t, got.VerifyBidHistory())

	bidding, err := repo.ListByBidder(ctx, alice.ID, repositories.QueryOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, bidding, 1)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrAuctionNotFound)
}
