// Package services contains stateless domain services for the auction bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// ValidateItemName enforces business rules for ItemName beyond the structural
// constraints enforced by the ItemName constructor (length 1–255).
//
// Business rules:
//   - No control characters (Unicode category Cc)
//   - No consecutive spaces
func ValidateItemName(name models.ItemName) error {
	s := name.String()

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("item name must not contain consecutive spaces")
	}

	return nil
}

// ValidateAuctionForCreation performs cross-field validation on a fully-constructed
// Auction before it is persisted. It assumes the Auction was built via
// models.NewAuction and re-checks the rules that make a listing biddable.
func ValidateAuctionForCreation(a *models.Auction, now time.Time) error {
	if a == nil {
		return fmt.Errorf("auction cannot be nil")
	}

	if err := ValidateItemName(a.ItemName); err != nil {
		return fmt.Errorf("invalid item name: %w", err)
	}

	if a.ID == uuid.Nil {
		return fmt.Errorf("id must be set")
	}

	if a.Seller.ID == uuid.Nil {
		return fmt.Errorf("seller must be set")
	}

	if a.StartingBid.IsNegative() {
		return fmt.Errorf("starting bid must not be negative")
	}

	if !a.CurrentBid.Equal(a.StartingBid) || a.HighestBidder != nil || a.BidCount != 0 {
		return fmt.Errorf("new auction must not carry bids")
	}

	if a.IsClosed || a.IsExpired(now) {
		return fmt.Errorf("closing time must be in the future")
	}

	return nil
}
