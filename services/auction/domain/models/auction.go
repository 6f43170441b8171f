package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain"
)

const maxDescriptionLength = 5000

// UserRef is a weak reference to a user of the users context.
// Username is denormalized display data captured when the reference was made.
type UserRef struct {
	ID       uuid.UUID
	Username string
}

// Bid is one accepted bid. Seq is the 1-based position in the auction's history.
type Bid struct {
	ID     uuid.UUID
	Seq    int
	Bidder UserRef
	Amount Money
	Time   time.Time
}

// Auction is the aggregate root of the auction context.
//
// Invariants kept by the methods below:
//   - CurrentBid >= StartingBid and never decreases
//   - every bid is strictly greater than the current bid it replaced
//   - the last bid, when present, equals CurrentBid and was placed by HighestBidder
//   - IsClosed never goes back to false
type Auction struct {
	ID            uuid.UUID
	ItemName      ItemName
	Description   string
	StartingBid   Money
	CurrentBid    Money
	HighestBidder *UserRef
	Seller        UserRef
	ClosingTime   time.Time
	IsClosed      bool
	CreatedAt     time.Time

	// Bids holds the history in insertion order. List queries may leave it
	// empty; BidCount is always accurate.
	Bids     []Bid
	BidCount int

	// Version is the optimistic-concurrency revision of the stored row.
	Version int64

	newBids       []Bid
	closedPending bool
}

// NewAuction constructs an open auction with CurrentBid equal to startingBid.
func NewAuction(seller UserRef, name ItemName, description string, startingBid Money, closingTime, now time.Time) (*Auction, error) {
	description = strings.TrimSpace(description)
	switch {
	case seller.ID == uuid.Nil:
		return nil, fmt.Errorf("%w: seller is required", domain.ErrInvalidAuction)
	case name == "":
		return nil, fmt.Errorf("%w: item name is required", domain.ErrInvalidAuction)
	case description == "":
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidAuction)
	case utf8.RuneCountInString(description) > maxDescriptionLength:
		return nil, fmt.Errorf("%w: description must not exceed %d characters", domain.ErrInvalidAuction, maxDescriptionLength)
	case startingBid.IsNegative():
		return nil, fmt.Errorf("%w: starting bid must not be negative", domain.ErrInvalidAuction)
	case !closingTime.After(now):
		return nil, fmt.Errorf("%w: closing time must be in the future", domain.ErrInvalidAuction)
	}

	return &Auction{
		ID:          uuid.New(),
		ItemName:    name,
		Description: description,
		StartingBid: startingBid,
		CurrentBid:  startingBid,
		Seller:      seller,
		ClosingTime: closingTime.UTC(),
		CreatedAt:   now.UTC(),
	}, nil
}

// IsExpired reports whether the closing time has been reached at now.
func (a *Auction) IsExpired(now time.Time) bool {
	return !a.ClosingTime.After(now)
}

// PlaceBid applies a bid after checking, in order: closed, expired, amount
// above the current bid, bidder is not the seller.
//
// An expired auction is closed as a side effect and ErrAuctionClosed is
// returned; callers must persist the aggregate when ClosedPending reports true.
func (a *Auction) PlaceBid(bidder UserRef, amount Money, now time.Time) error {
	if a.IsClosed {
		return domain.ErrAuctionClosed
	}
	if a.IsExpired(now) {
		a.Close()
		return domain.ErrAuctionClosed
	}
	if !amount.GreaterThan(a.CurrentBid) {
		return &domain.BidTooLowError{CurrentBid: a.CurrentBid.Decimal()}
	}
	if bidder.ID == a.Seller.ID {
		return domain.ErrSelfBid
	}

	bid := Bid{
		ID:     uuid.New(),
		Seq:    a.BidCount + 1,
		Bidder: bidder,
		Amount: amount,
		Time:   now.UTC(),
	}
	a.Bids = append(a.Bids, bid)
	a.BidCount++
	a.newBids = append(a.newBids, bid)
	a.CurrentBid = amount
	h := bidder
	a.HighestBidder = &h
	return nil
}

// Close marks the auction closed. It reports false when it already was.
// Bids, CurrentBid and HighestBidder are left untouched.
func (a *Auction) Close() bool {
	if a.IsClosed {
		return false
	}
	a.IsClosed = true
	a.closedPending = true
	return true
}

// Winner returns the highest bidder once the auction is closed.
func (a *Auction) Winner() *UserRef {
	if !a.IsClosed {
		return nil
	}
	return a.HighestBidder
}

// PendingBids returns bids accepted since the aggregate was loaded or last persisted.
func (a *Auction) PendingBids() []Bid {
	return a.newBids
}

// ClosedPending reports whether Close took effect since the last persist.
func (a *Auction) ClosedPending() bool {
	return a.closedPending
}

// HasChanges reports whether the aggregate holds mutations not yet persisted.
func (a *Auction) HasChanges() bool {
	return len(a.newBids) > 0 || a.closedPending
}

// MarkPersisted records a successful write at version.
func (a *Auction) MarkPersisted(version int64) {
	a.Version = version
	a.newBids = nil
	a.closedPending = false
}

// Clone returns a deep copy, pending changes included.
func (a *Auction) Clone() *Auction {
	c := *a
	if a.HighestBidder != nil {
		h := *a.HighestBidder
		c.HighestBidder = &h
	}
	c.Bids = append([]Bid(nil), a.Bids...)
	c.newBids = append([]Bid(nil), a.newBids...)
	return &c
}

// VerifyBidHistory checks the bid history against the current state.
// It requires the full history to be loaded.
func (a *Auction) VerifyBidHistory() error {
	if a.CurrentBid.Decimal().LessThan(a.StartingBid.Decimal()) {
		return fmt.Errorf("current bid %s below starting bid %s", a.CurrentBid, a.StartingBid)
	}
	if len(a.Bids) != a.BidCount {
		return fmt.Errorf("bid count %d does not match %d loaded bids", a.BidCount, len(a.Bids))
	}
	if len(a.Bids) == 0 {
		if a.HighestBidder != nil || !a.CurrentBid.Equal(a.StartingBid) {
			return fmt.Errorf("auction without bids has bid state")
		}
		return nil
	}

	prev := a.StartingBid
	for i, b := range a.Bids {
		if b.Seq != i+1 {
			return fmt.Errorf("bid %d has seq %d", i+1, b.Seq)
		}
		if !b.Amount.GreaterThan(prev) {
			return fmt.Errorf("bid %d amount %s does not exceed %s", b.Seq, b.Amount, prev)
		}
		prev = b.Amount
	}

	last := a.Bids[len(a.Bids)-1]
	if !last.Amount.Equal(a.CurrentBid) {
		return fmt.Errorf("last bid %s does not equal current bid %s", last.Amount, a.CurrentBid)
	}
	if a.HighestBidder == nil || a.HighestBidder.ID != last.Bidder.ID {
		return fmt.Errorf("highest bidder does not match last bidder")
	}
	return nil
}
