package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

func TestValidateItemName(t *testing.T) {
	tests := []struct {
		name    string
		input   models.ItemName
		wantErr bool
	}{
		{"simple", "Vintage Camera", false},
		{"unicode", "Café Chair", false},
		{"control character", "Camera\x00", true},
		{"tab", "Camera\tLens", true},
		{"consecutive spaces", "Vintage  Camera", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateItemName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAuctionForCreation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seller := models.UserRef{ID: uuid.New(), Username: "seller"}

	valid := func(t *testing.T) *models.Auction {
		t.Helper()
		a, err := models.NewAuction(seller, "Vintage Camera", "Works", models.MustParseMoney("10"), now.Add(time.Hour), now)
		if err != nil {
			t.Fatalf("new auction: %v", err)
		}
		return a
	}

	t.Run("valid auction", func(t *testing.T) {
		if err := ValidateAuctionForCreation(valid(t), now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("nil auction", func(t *testing.T) {
		if err := ValidateAuctionForCreation(nil, now); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		a := valid(t)
		a.ItemName = "bad  name"
		if err := ValidateAuctionForCreation(a, now); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("expired by validation time", func(t *testing.T) {
		if err := ValidateAuctionForCreation(valid(t), now.Add(2*time.Hour)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("carries bids", func(t *testing.T) {
		a := valid(t)
		a.CurrentBid = models.MustParseMoney("20")
		if err := ValidateAuctionForCreation(a, now); err == nil {
			t.Fatal("expected error")
		}
	})
}
