package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	pkgcache "github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/pkg/keylock"
	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/telemetry"
	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	domainsvcs "github.com/ghuser/auctionhouse/services/auction/domain/services"
)

// Defaults applied by NewAuctionService for zero Config fields.
const (
	DefaultMaxBidAttempts   = 5
	DefaultSweepBatchSize   = 200
	DefaultSweepConcurrency = 8
	DefaultPageLimit        = 50
	MaxPageLimit            = 100

	retryInitialInterval = 5 * time.Millisecond
	retryMaxInterval     = 200 * time.Millisecond
	cacheWriteTimeout    = time.Second
)

// AuctionCache is the read-model cache used by AuctionService.
// *cache.AuctionCache satisfies it.
type AuctionCache interface {
	Get(ctx context.Context, id uuid.UUID) (*pkgcache.CachedAuction, error)
	Set(ctx context.Context, entry *pkgcache.CachedAuction) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Config tunes AuctionService.
type Config struct {
	// MaxBidAttempts bounds how often a read-validate-write is re-run after
	// losing an optimistic version check.
	MaxBidAttempts   int
	SweepBatchSize   int
	SweepConcurrency int
}

// AuctionService orchestrates auction creation, bidding and closing.
//
// Writes to a single auction are serialized in-process by a per-auction lock;
// across processes the repository's version check rejects stale writes and the
// whole operation is re-run. Event publishing is handled by the repository
// layer (outbox pattern). Reads are served from Redis when a cache is set.
type AuctionService struct {
	repo    repositories.AuctionRepository
	cache   AuctionCache
	locks   *keylock.KeyLock[uuid.UUID]
	clock   clock.Clock
	metrics *telemetry.AuctionMetrics
	log     logger.Logger
	cfg     Config
}

// NewAuctionService returns an AuctionService. auctionCache and metrics may be nil.
func NewAuctionService(
	repo repositories.AuctionRepository,
	auctionCache AuctionCache,
	clk clock.Clock,
	metrics *telemetry.AuctionMetrics,
	log logger.Logger,
	cfg Config,
) *AuctionService {
	if cfg.MaxBidAttempts <= 0 {
		cfg.MaxBidAttempts = DefaultMaxBidAttempts
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = DefaultSweepBatchSize
	}
	if cfg.SweepConcurrency <= 0 {
		cfg.SweepConcurrency = DefaultSweepConcurrency
	}
	return &AuctionService{
		repo:    repo,
		cache:   auctionCache,
		locks:   keylock.New[uuid.UUID](),
		clock:   clk,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
	}
}

// Create validates and persists a new open auction. The repository publishes AuctionCreatedEvent.
func (s *AuctionService) Create(
	ctx context.Context,
	seller models.UserRef,
	itemName, description string,
	startingBid models.Money,
	closingTime time.Time,
) (*models.Auction, error) {
	name, err := models.NewItemName(itemName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAuction, err)
	}

	now := s.clock.Now()
	auction, err := models.NewAuction(seller, name, description, startingBid, closingTime, now)
	if err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateAuctionForCreation(auction, now); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAuction, err)
	}

	if err := s.repo.Save(ctx, auction); err != nil {
		return nil, fmt.Errorf("save auction: %w", err)
	}

	s.log.InfoContext(ctx, "auction created",
		"auction_id", auction.ID,
		"seller_id", seller.ID,
		"closing_time", auction.ClosingTime,
	)
	return auction, nil
}

// PlaceBid validates and records a bid. Checks run in this order and the first
// failure wins: not found, closed, expired (the auction is closed and
// ErrAuctionClosed returned), amount not above the current bid, bidder is the
// seller. On success the updated auction is returned.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID uuid.UUID, bidder models.UserRef, amount models.Money) (*models.Auction, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "AuctionService.PlaceBid", trace.WithAttributes(
		attribute.String("auction.id", auctionID.String()),
		attribute.String("bidder.id", bidder.ID.String()),
	))
	defer span.End()

	if !amount.IsPositive() {
		s.metrics.BidRejected(ctx, "invalid_amount")
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}

	unlock, err := s.locks.Lock(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("lock auction: %w", err)
	}
	defer unlock()

	auction, err := s.retry(ctx, func() (*models.Auction, error) {
		a, err := s.repo.GetByID(ctx, auctionID)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		bidErr := a.PlaceBid(bidder, amount, s.clock.Now())
		if bidErr != nil && !a.ClosedPending() {
			return nil, backoff.Permanent(bidErr)
		}

		if err := s.update(ctx, a); err != nil {
			return nil, err
		}
		if bidErr != nil {
			s.metrics.AuctionClosed(ctx, telemetry.CloseTriggerAccess)
			s.log.InfoContext(ctx, "auction closed on bid after closing time", "auction_id", a.ID)
			return nil, backoff.Permanent(bidErr)
		}
		return a, nil
	})
	if err != nil {
		if reason := rejectReason(err); reason != "" {
			s.metrics.BidRejected(ctx, reason)
			span.SetAttributes(attribute.String("bid.rejected", reason))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, "place bid failed")
		}
		return nil, fmt.Errorf("place bid: %w", err)
	}

	s.metrics.BidAccepted(ctx)
	s.log.InfoContext(ctx, "bid accepted",
		"auction_id", auction.ID,
		"bidder_id", bidder.ID,
		"amount", amount.String(),
		"version", auction.Version,
	)
	return auction, nil
}

// GetByID retrieves an auction using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *AuctionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			var a models.Auction
			if err := json.Unmarshal(cached.Payload, &a); err == nil {
				return &a, nil
			}
			s.log.WarnContext(ctx, "discarding undecodable cache entry", "auction_id", id)
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "auction cache read failed", "auction_id", id, "error", err)
		}
	}

	auction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get auction: %w", err)
	}

	if s.cache != nil {
		snapshot := auction.Clone()
		go s.storeSnapshot(context.WithoutCancel(ctx), snapshot)
	}
	return auction, nil
}

// ListOpen returns open auctions, soonest closing first.
func (s *AuctionService) ListOpen(ctx context.Context, opts repositories.QueryOpts) ([]*models.Auction, error) {
	auctions, err := s.repo.ListOpen(ctx, normalize(opts))
	if err != nil {
		return nil, fmt.Errorf("list open auctions: %w", err)
	}
	return auctions, nil
}

// ListBySeller returns the seller's auctions, newest first.
func (s *AuctionService) ListBySeller(ctx context.Context, sellerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Auction, error) {
	auctions, err := s.repo.ListBySeller(ctx, sellerID, normalize(opts))
	if err != nil {
		return nil, fmt.Errorf("list seller auctions: %w", err)
	}
	return auctions, nil
}

// ListByBidder returns auctions the user has bid on, soonest closing first.
func (s *AuctionService) ListByBidder(ctx context.Context, bidderID uuid.UUID, opts repositories.QueryOpts) ([]*models.Auction, error) {
	auctions, err := s.repo.ListByBidder(ctx, bidderID, normalize(opts))
	if err != nil {
		return nil, fmt.Errorf("list bidder auctions: %w", err)
	}
	return auctions, nil
}

// Close closes the auction regardless of its closing time. It reports whether
// this call performed the transition; closing a closed auction is a no-op.
func (s *AuctionService) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.close(ctx, id, telemetry.CloseTriggerManual, false)
}

// CloseIfExpired closes the auction only if its closing time has passed.
// It is the entry point of the deadline workflow.
func (s *AuctionService) CloseIfExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.close(ctx, id, telemetry.CloseTriggerDeadline, true)
}

// SweepExpired closes every open auction whose closing time is not after the
// sweep's start time. Auctions are fetched in batches and closed with bounded
// parallelism; a failure on one auction does not stop the others. It returns
// the number of auctions closed and the joined per-auction errors.
func (s *AuctionService) SweepExpired(ctx context.Context) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "AuctionService.SweepExpired")
	defer span.End()

	now := s.clock.Now()
	total := 0
	var errs []error

	for {
		batch, err := s.repo.ListExpiredOpen(ctx, now, s.cfg.SweepBatchSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("list expired auctions: %w", err))
			break
		}
		if len(batch) == 0 {
			break
		}

		closed, batchErrs := s.closeBatch(ctx, batch)
		total += closed
		errs = append(errs, batchErrs...)

		// Failed auctions would be listed again; leave them to the next sweep.
		if len(batchErrs) > 0 || len(batch) < s.cfg.SweepBatchSize || ctx.Err() != nil {
			break
		}
	}

	span.SetAttributes(attribute.Int("auctions.closed", total))
	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sweep incomplete")
	}
	return total, err
}

func (s *AuctionService) closeBatch(ctx context.Context, batch []*models.Auction) (int, []error) {
	var (
		mu     sync.Mutex
		closed int
		errs   []error
	)

	var g errgroup.Group
	g.SetLimit(s.cfg.SweepConcurrency)
	for _, a := range batch {
		g.Go(func() error {
			ok, err := s.close(ctx, a.ID, telemetry.CloseTriggerSweep, true)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("close auction %s: %w", a.ID, err))
			} else if ok {
				closed++
			}
			return nil
		})
	}
	_ = g.Wait()
	return closed, errs
}

// RefreshCache reloads the auction from the store and writes it to the cache.
// Used by event subscribers; a no-op without a cache.
func (s *AuctionService) RefreshCache(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	auction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("refresh cache: %w", err)
	}
	payload, err := json.Marshal(auction)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.cache.Set(ctx, &pkgcache.CachedAuction{ID: auction.ID, Version: auction.Version, Payload: payload}); err != nil {
		return fmt.Errorf("refresh cache: %w", err)
	}
	return nil
}

func (s *AuctionService) close(ctx context.Context, id uuid.UUID, trigger string, onlyExpired bool) (bool, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return false, fmt.Errorf("lock auction: %w", err)
	}
	defer unlock()

	auction, err := s.retry(ctx, func() (*models.Auction, error) {
		a, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if onlyExpired && !a.IsExpired(s.clock.Now()) {
			return nil, nil
		}
		if !a.Close() {
			return nil, nil
		}
		if err := s.update(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	})
	if err != nil {
		return false, fmt.Errorf("close auction: %w", err)
	}
	if auction == nil {
		return false, nil
	}

	s.metrics.AuctionClosed(ctx, trigger)
	s.log.InfoContext(ctx, "auction closed",
		"auction_id", id,
		"trigger", trigger,
		"final_bid", auction.CurrentBid.String(),
	)
	return true, nil
}

// update persists a and refreshes the cache. ErrConflict is returned as a
// retryable error; anything else stops the retry loop.
func (s *AuctionService) update(ctx context.Context, a *models.Auction) error {
	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.metrics.BidConflict(ctx)
			s.log.DebugContext(ctx, "auction write conflict, retrying", "auction_id", a.ID)
			return err
		}
		return backoff.Permanent(err)
	}
	if s.cache != nil {
		s.storeSnapshot(ctx, a.Clone())
	}
	return nil
}

func (s *AuctionService) retry(ctx context.Context, op func() (*models.Auction, error)) (*models.Auction, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.cfg.MaxBidAttempts)),
	)
}

// storeSnapshot writes a to the cache. Failures are logged; a stale entry is
// removed so readers fall back to the store.
func (s *AuctionService) storeSnapshot(ctx context.Context, a *models.Auction) {
	ctx, cancel := context.WithTimeout(ctx, cacheWriteTimeout)
	defer cancel()

	payload, err := json.Marshal(a)
	if err != nil {
		s.log.WarnContext(ctx, "encode auction snapshot failed", "auction_id", a.ID, "error", err)
		return
	}
	if _, err := s.cache.Set(ctx, &pkgcache.CachedAuction{ID: a.ID, Version: a.Version, Payload: payload}); err != nil {
		s.log.WarnContext(ctx, "auction cache write failed", "auction_id", a.ID, "error", err)
		_ = s.cache.Delete(ctx, a.ID)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAuctionClosed):
		return "closed"
	case errors.Is(err, domain.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, domain.ErrSelfBid):
		return "self_bid"
	default:
		return ""
	}
}

func normalize(opts repositories.QueryOpts) repositories.QueryOpts {
	if opts.Limit <= 0 {
		opts.Limit = DefaultPageLimit
	}
	if opts.Limit > MaxPageLimit {
		opts.Limit = MaxPageLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}
