package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	sentinels := []error{
		ErrAuctionNotFound, ErrInvalidAuction, ErrInvalidAmount, ErrAuctionClosed,
		ErrBidTooLow, ErrSelfBid, ErrConflict, ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		t.Run(s.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("place bid: %w", s)
			if !errors.Is(wrapped, s) {
				t.Fatalf("errors.Is must match wrapped %v", s)
			}
		})
	}
}

func TestBidTooLowError(t *testing.T) {
	err := fmt.Errorf("place bid: %w", &BidTooLowError{CurrentBid: decimal.RequireFromString("120.5")})

	if !errors.Is(err, ErrBidTooLow) {
		t.Fatal("BidTooLowError must match ErrBidTooLow")
	}
	if errors.Is(err, ErrAuctionClosed) {
		t.Fatal("BidTooLowError must not match other sentinels")
	}

	var tooLow *BidTooLowError
	if !errors.As(err, &tooLow) {
		t.Fatal("errors.As must extract *BidTooLowError")
	}
	if tooLow.CurrentBid.StringFixed(2) != "120.50" {
		t.Fatalf("unexpected current bid %s", tooLow.CurrentBid)
	}
	if got := tooLow.Error(); got != "bid must be higher than the current bid (120.50)" {
		t.Fatalf("unexpected message %q", got)
	}
}
