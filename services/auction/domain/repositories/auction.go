package repositories

//go:generate mockgen -destination=mocks/auction_repository.go -package=mocks . AuctionRepository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// AuctionRepository is the persistence interface for the Auction aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Implementations report ErrAuctionNotFound for missing auctions and wrap
// transport or timeout failures in ErrStoreUnavailable.
type AuctionRepository interface {
	// Save persists a new auction.
	Save(ctx context.Context, auction *models.Auction) error

	// GetByID returns the auction with its full bid history in insertion order.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error)

	// ListOpen returns auctions that are not closed, soonest closing first.
	ListOpen(ctx context.Context, opts QueryOpts) ([]*models.Auction, error)

	// ListExpiredOpen returns up to limit open auctions whose closing time is <= now.
	ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]*models.Auction, error)

	// ListBySeller returns the seller's auctions, newest first.
	ListBySeller(ctx context.Context, sellerID uuid.UUID, opts QueryOpts) ([]*models.Auction, error)

	// ListByBidder returns auctions the user has bid on, soonest closing first.
	ListByBidder(ctx context.Context, bidderID uuid.UUID, opts QueryOpts) ([]*models.Auction, error)

	// Update persists pending bids and state changes if the stored version still
	// equals auction.Version, then calls auction.MarkPersisted. Returns
	// ErrConflict when another writer got there first.
	Update(ctx context.Context, auction *models.Auction) error
}
