package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// Watermill topics published by the auction repository inside the write transaction.
const (
	TopicAuctionCreated   = "auction.created"
	TopicAuctionBidPlaced = "auction.bid_placed"
	TopicAuctionClosed    = "auction.closed"
)

// EventVersion is the schema version of every payload below; increment on breaking changes.
const EventVersion = 1

// AuctionCreatedEvent is published after a new Auction is persisted.
// The worker uses ClosingTime to schedule the deadline workflow.
type AuctionCreatedEvent struct {
	EventID     uuid.UUID    `json:"event_id"`
	Version     int          `json:"version"`
	AuctionID   uuid.UUID    `json:"auction_id"`
	SellerID    uuid.UUID    `json:"seller_id"`
	ItemName    string       `json:"item_name"`
	StartingBid models.Money `json:"starting_bid"`
	ClosingTime time.Time    `json:"closing_time"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// AuctionBidPlacedEvent is published once per accepted bid.
type AuctionBidPlacedEvent struct {
	EventID        uuid.UUID    `json:"event_id"`
	Version        int          `json:"version"`
	AuctionID      uuid.UUID    `json:"auction_id"`
	BidID          uuid.UUID    `json:"bid_id"`
	Seq            int          `json:"seq"`
	BidderID       uuid.UUID    `json:"bidder_id"`
	Amount         models.Money `json:"amount"`
	AuctionVersion int64        `json:"auction_version"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

// AuctionClosedEvent is published on the OPEN to CLOSED transition.
// WinnerID is nil when the auction closed without bids.
type AuctionClosedEvent struct {
	EventID        uuid.UUID    `json:"event_id"`
	Version        int          `json:"version"`
	AuctionID      uuid.UUID    `json:"auction_id"`
	WinnerID       *uuid.UUID   `json:"winner_id,omitempty"`
	FinalBid       models.Money `json:"final_bid"`
	AuctionVersion int64        `json:"auction_version"`
	OccurredAt     time.Time    `json:"occurred_at"`
}
