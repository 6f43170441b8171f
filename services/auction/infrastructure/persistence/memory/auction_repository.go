// Package memory is an in-process AuctionRepository used by tests and local runs
// without Postgres. It honours the same version check as the Postgres store.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
)

// AuctionRepository keeps auctions in a map. Every read returns a copy.
type AuctionRepository struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*models.Auction
}

// NewAuctionRepository returns an empty repository.
func NewAuctionRepository() *AuctionRepository {
	return &AuctionRepository{auctions: make(map[uuid.UUID]*models.Auction)}
}

func (r *AuctionRepository) Save(_ context.Context, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[auction.ID]; ok {
		return fmt.Errorf("%w: auction %s already exists", domain.ErrInvalidAuction, auction.ID)
	}
	auction.MarkPersisted(1)
	r.auctions[auction.ID] = auction.Clone()
	return nil
}

func (r *AuctionRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return a.Clone(), nil
}

func (r *AuctionRepository) ListOpen(_ context.Context, opts repositories.QueryOpts) ([]*models.Auction, error) {
	out := r.filter(func(a *models.Auction) bool { return !a.IsClosed })
	slices.SortFunc(out, byClosingTime)
	return paginate(out, opts), nil
}

func (r *AuctionRepository) ListExpiredOpen(_ context.Context, now time.Time, limit int) ([]*models.Auction, error) {
	out := r.filter(func(a *models.Auction) bool { return !a.IsClosed && a.IsExpired(now) })
	slices.SortFunc(out, byClosingTime)
	return paginate(out, repositories.QueryOpts{Limit: limit}), nil
}

func (r *AuctionRepository) ListBySeller(_ context.Context, sellerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Auction, error) {
	out := r.filter(func(a *models.Auction) bool { return a.Seller.ID == sellerID })
	slices.SortFunc(out, func(a, b *models.Auction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return paginate(out, opts), nil
}

func (r *AuctionRepository) ListByBidder(_ context.Context, bidderID uuid.UUID, opts repositories.QueryOpts) ([]*models.Auction, error) {
	out := r.filter(func(a *models.Auction) bool {
		return slices.ContainsFunc(a.Bids, func(b models.Bid) bool { return b.Bidder.ID == bidderID })
	})
	slices.SortFunc(out, byClosingTime)
	return paginate(out, opts), nil
}

// Update stores the auction if its version matches, bumping the version by one.
func (r *AuctionRepository) Update(_ context.Context, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.auctions[auction.ID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if stored.Version != auction.Version {
		return domain.ErrConflict
	}

	auction.MarkPersisted(auction.Version + 1)
	r.auctions[auction.ID] = auction.Clone()
	return nil
}

func (r *AuctionRepository) filter(keep func(*models.Auction) bool) []*models.Auction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Auction
	for _, a := range r.auctions {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func byClosingTime(a, b *models.Auction) int {
	if c := a.ClosingTime.Compare(b.ClosingTime); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func paginate(in []*models.Auction, opts repositories.QueryOpts) []*models.Auction {
	if opts.Offset >= len(in) {
		return []*models.Auction{}
	}
	in = in[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(in) {
		in = in[:opts.Limit]
	}
	return in
}
