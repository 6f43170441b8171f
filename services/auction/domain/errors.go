package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the auction domain. Use errors.Is() to check these.
var (
	// ErrAuctionNotFound indicates the requested auction does not exist.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrInvalidAuction indicates creation input violates domain constraints.
	ErrInvalidAuction = errors.New("invalid auction")

	// ErrInvalidAmount indicates a bid amount that is not a positive money value.
	ErrInvalidAmount = errors.New("invalid bid amount")

	// ErrAuctionClosed indicates the auction no longer accepts bids.
	ErrAuctionClosed = errors.New("auction is closed")

	// ErrBidTooLow indicates the bid does not exceed the current bid.
	// The concrete error is a *BidTooLowError carrying the current bid.
	ErrBidTooLow = errors.New("bid too low")

	// ErrSelfBid indicates the seller tried to bid on their own auction.
	ErrSelfBid = errors.New("cannot bid on your own auction")

	// ErrConflict indicates a concurrent write won the race and retries were exhausted.
	ErrConflict = errors.New("auction was modified concurrently")

	// ErrStoreUnavailable indicates the auction store could not be reached in time.
	ErrStoreUnavailable = errors.New("auction store unavailable")
)

// BidTooLowError reports the current bid a rejected amount had to exceed.
type BidTooLowError struct {
	CurrentBid decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be higher than the current bid (%s)", e.CurrentBid.StringFixed(2))
}

// Is makes errors.Is(err, ErrBidTooLow) match.
func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}
