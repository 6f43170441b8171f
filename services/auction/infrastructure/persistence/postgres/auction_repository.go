package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/database"
	"github.com/ghuser/auctionhouse/pkg/events"
	"github.com/ghuser/auctionhouse/services/auction/domain"
	domainevents "github.com/ghuser/auctionhouse/services/auction/domain/events"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/postgres/db"
)

// DefaultTimeout bounds every repository call when none is configured.
const DefaultTimeout = 5 * time.Second

// AuctionRepository implements repositories.AuctionRepository against PostgreSQL.
type AuctionRepository struct {
	db      *database.Database
	bus     *events.EventBus
	timeout time.Duration
}

// NewAuctionRepository returns an AuctionRepository backed by the given pool
// and event bus. Domain events are written to the outbox inside the same
// transaction as the state change. A nil bus disables publishing.
func NewAuctionRepository(database *database.Database, bus *events.EventBus, timeout time.Duration) *AuctionRepository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AuctionRepository{db: database, bus: bus, timeout: timeout}
}

// Save persists a new Auction and publishes AuctionCreatedEvent within the same transaction.
func (r *AuctionRepository) Save(ctx context.Context, auction *models.Auction) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const version = 1
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertAuction(ctx, db.InsertAuctionParams{
			ID:             auction.ID,
			ItemName:       auction.ItemName.String(),
			Description:    auction.Description,
			StartingBid:    auction.StartingBid.Decimal(),
			SellerID:       auction.Seller.ID,
			SellerUsername: auction.Seller.Username,
			ClosingTime:    auction.ClosingTime,
			IsClosed:       auction.IsClosed,
			Version:        version,
			CreatedAt:      auction.CreatedAt,
		}); err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: auction %s already exists", domain.ErrInvalidAuction, auction.ID)
			}
			return fmt.Errorf("insert auction: %w", err)
		}

		if r.bus == nil {
			return nil
		}
		eventID := uuid.New()
		msg, err := events.NewJSONMessage(ctx, eventID, domainevents.EventVersion, domainevents.AuctionCreatedEvent{
			EventID:     eventID,
			Version:     domainevents.EventVersion,
			AuctionID:   auction.ID,
			SellerID:    auction.Seller.ID,
			ItemName:    auction.ItemName.String(),
			StartingBid: auction.StartingBid,
			ClosingTime: auction.ClosingTime,
			OccurredAt:  auction.CreatedAt,
		})
		if err != nil {
			return err
		}
		return r.publish(tx, domainevents.TopicAuctionCreated, msg)
	})
	if err != nil {
		return storeErr("save auction", err)
	}

	auction.MarkPersisted(version)
	return nil
}

// GetByID retrieves an Auction with its bid history. Returns ErrAuctionNotFound if not found.
func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q := db.New(r.db.DB())
	row, err := q.GetAuctionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, storeErr("query auction", err)
	}

	bids, err := q.ListBidsByAuctionID(ctx, id)
	if err != nil {
		return nil, storeErr("query bids", err)
	}

	a, err := rowToAuction(row)
	if err != nil {
		return nil, err
	}
	a.Bids = make([]models.Bid, 0, len(bids))
	for _, b := range bids {
		bid, err := rowToBid(b)
		if err != nil {
			return nil, err
		}
		a.Bids = append(a.Bids, bid)
	}
	return a, nil
}

// ListOpen returns open auctions ordered by closing time.
func (r *AuctionRepository) ListOpen(ctx context.Context, opts repositories.QueryOpts) ([]*models.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := db.New(r.db.DB()).ListOpenAuctions(ctx, db.ListOpenAuctionsParams{
		Limit:  int32(opts.Limit),
		Offset: int32(opts.Offset),
	})
	if err != nil {
		return nil, storeErr("query open auctions", err)
	}
	return rowsToAuctions(rows)
}

// ListExpiredOpen returns at most limit open auctions whose closing time is not after now.
func (r *AuctionRepository) ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]*models.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := db.New(r.db.DB()).ListExpiredOpenAuctions(ctx, db.ListExpiredOpenAuctionsParams{
		ClosingTime: now,
		Limit:       int32(limit),
	})
	if err != nil {
		return nil, storeErr("query expired auctions", err)
	}
	return rowsToAuctions(rows)
}

// ListBySeller returns the seller's auctions, newest first.
func (r *AuctionRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, opts repositories.QueryOpts) ([]*models.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := db.New(r.db.DB()).ListAuctionsBySeller(ctx, db.ListAuctionsBySellerParams{
		SellerID: sellerID,
		Limit:    int32(opts.Limit),
		Offset:   int32(opts.Offset),
	})
	if err != nil {
		return nil, storeErr("query seller auctions", err)
	}
	return rowsToAuctions(rows)
}

// ListByBidder returns auctions the user placed at least one bid on.
func (r *AuctionRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID, opts repositories.QueryOpts) ([]*models.Auction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := db.New(r.db.DB()).ListAuctionsByBidder(ctx, db.ListAuctionsByBidderParams{
		BidderID: bidderID,
		Limit:    int32(opts.Limit),
		Offset:   int32(opts.Offset),
	})
	if err != nil {
		return nil, storeErr("query bidder auctions", err)
	}
	return rowsToAuctions(rows)
}

// Update writes the auction state conditioned on its version, inserts pending
// bids and publishes the matching events, all in one transaction.
func (r *AuctionRepository) Update(ctx context.Context, auction *models.Auction) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var newVersion int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)

		params := db.UpdateAuctionStateParams{
			ID:         auction.ID,
			Version:    auction.Version,
			CurrentBid: auction.CurrentBid.Decimal(),
			IsClosed:   auction.IsClosed,
			BidCount:   int32(auction.BidCount),
		}
		if hb := auction.HighestBidder; hb != nil {
			params.HighestBidderID = uuid.NullUUID{UUID: hb.ID, Valid: true}
			params.HighestBidderUsername = sql.NullString{String: hb.Username, Valid: true}
		}

		v, err := q.UpdateAuctionState(ctx, params)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrConflict
			}
			return fmt.Errorf("update auction: %w", err)
		}
		newVersion = v

		for _, b := range auction.PendingBids() {
			if err := q.InsertBid(ctx, db.InsertBidParams{
				ID:             b.ID,
				AuctionID:      auction.ID,
				Seq:            int32(b.Seq),
				BidderID:       b.Bidder.ID,
				BidderUsername: b.Bidder.Username,
				Amount:         b.Amount.Decimal(),
				CreatedAt:      b.Time,
			}); err != nil {
				if database.IsUniqueViolation(err) {
					return domain.ErrConflict
				}
				return fmt.Errorf("insert bid: %w", err)
			}
		}

		if r.bus == nil {
			return nil
		}
		return r.publishChanges(ctx, tx, auction, newVersion)
	})
	if err != nil {
		return storeErr("update auction", err)
	}

	auction.MarkPersisted(newVersion)
	return nil
}

func (r *AuctionRepository) publishChanges(ctx context.Context, tx *sql.Tx, auction *models.Auction, version int64) error {
	for _, b := range auction.PendingBids() {
		eventID := uuid.New()
		msg, err := events.NewJSONMessage(ctx, eventID, domainevents.EventVersion, domainevents.AuctionBidPlacedEvent{
			EventID:        eventID,
			Version:        domainevents.EventVersion,
			AuctionID:      auction.ID,
			BidID:          b.ID,
			Seq:            b.Seq,
			BidderID:       b.Bidder.ID,
			Amount:         b.Amount,
			AuctionVersion: version,
			OccurredAt:     b.Time,
		})
		if err != nil {
			return err
		}
		if err := r.publish(tx, domainevents.TopicAuctionBidPlaced, msg); err != nil {
			return err
		}
	}

	if !auction.ClosedPending() {
		return nil
	}
	evt := domainevents.AuctionClosedEvent{
		EventID:        uuid.New(),
		Version:        domainevents.EventVersion,
		AuctionID:      auction.ID,
		FinalBid:       auction.CurrentBid,
		AuctionVersion: version,
		OccurredAt:     time.Now().UTC(),
	}
	if w := auction.Winner(); w != nil {
		evt.WinnerID = &w.ID
	}
	msg, err := events.NewJSONMessage(ctx, evt.EventID, domainevents.EventVersion, evt)
	if err != nil {
		return err
	}
	return r.publish(tx, domainevents.TopicAuctionClosed, msg)
}

func (r *AuctionRepository) publish(tx *sql.Tx, topic string, msg *message.Message) error {
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	if err := p.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// storeErr passes domain errors through and tags transport failures with ErrStoreUnavailable.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidAuction),
		errors.Is(err, domain.ErrAuctionNotFound):
		return err
	case database.IsRetryable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	case database.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func rowsToAuctions(rows []db.AuctionAuction) ([]*models.Auction, error) {
	out := make([]*models.Auction, 0, len(rows))
	for _, row := range rows {
		a, err := rowToAuction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// rowToAuction maps a db.AuctionAuction to a domain models.Auction without bid history.
func rowToAuction(row db.AuctionAuction) (*models.Auction, error) {
	starting, err := models.NewMoney(row.StartingBid)
	if err != nil {
		return nil, fmt.Errorf("auction %s starting bid: %w", row.ID, err)
	}
	current, err := models.NewMoney(row.CurrentBid)
	if err != nil {
		return nil, fmt.Errorf("auction %s current bid: %w", row.ID, err)
	}

	a := &models.Auction{
		ID:          row.ID,
		ItemName:    models.ItemName(row.ItemName),
		Description: row.Description,
		StartingBid: starting,
		CurrentBid:  current,
		Seller:      models.UserRef{ID: row.SellerID, Username: row.SellerUsername},
		ClosingTime: row.ClosingTime.UTC(),
		IsClosed:    row.IsClosed,
		CreatedAt:   row.CreatedAt.UTC(),
		BidCount:    int(row.BidCount),
		Version:     row.Version,
	}
	if row.HighestBidderID.Valid {
		a.HighestBidder = &models.UserRef{
			ID:       row.HighestBidderID.UUID,
			Username: row.HighestBidderUsername.String,
		}
	}
	return a, nil
}

func rowToBid(row db.AuctionBid) (models.Bid, error) {
	amount, err := models.NewMoney(row.Amount)
	if err != nil {
		return models.Bid{}, fmt.Errorf("bid %s amount: %w", row.ID, err)
	}
	return models.Bid{
		ID:     row.ID,
		Seq:    int(row.Seq),
		Bidder: models.UserRef{ID: row.BidderID, Username: row.BidderUsername},
		Amount: amount,
		Time:   row.CreatedAt.UTC(),
	}, nil
}
