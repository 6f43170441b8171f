package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// UserRefResponse identifies a seller or bidder. Email is only filled for the
// seller of a single auction.
type UserRefResponse struct {
	ID       uuid.UUID `json:"id"              example:"550e8400-e29b-41d4-a716-446655440000"`
	Username string    `json:"username"        example:"alice"`
	Email    string    `json:"email,omitempty" example:"alice@example.com"`
} // @name UserRef

// BidResponse is one entry of an auction's bid history.
type BidResponse struct {
	Bidder UserRefResponse `json:"bidder"`
	Amount models.Money    `json:"amount" swaggertype:"number" example:"125.50"`
	Time   time.Time       `json:"time"   example:"2024-01-15T10:30:00Z"`
} // @name Bid

// AuctionSummary is the list representation of an auction.
type AuctionSummary struct {
	ID            uuid.UUID        `json:"id"             example:"123e4567-e89b-12d3-a456-426614174000"`
	ItemName      string           `json:"item_name"      example:"Vintage camera"`
	CurrentBid    models.Money     `json:"current_bid"    swaggertype:"number" example:"125.50"`
	Seller        UserRefResponse  `json:"seller"`
	HighestBidder *UserRefResponse `json:"highest_bidder,omitempty"`
	ClosingTime   time.Time        `json:"closing_time"   example:"2024-01-16T10:30:00Z"`
	Status        string           `json:"status"         enums:"open,closed" example:"open"`
	BidCount      int              `json:"bid_count"      example:"3"`
} // @name AuctionSummary

// AuctionResponse is the full representation returned by GET /auctions/{id}
// and POST /auctions.
type AuctionResponse struct {
	AuctionSummary
	Description string           `json:"description"  example:"Fully working, with original case"`
	StartingBid models.Money     `json:"starting_bid" swaggertype:"number" example:"100.00"`
	Winner      *UserRefResponse `json:"winner,omitempty"`
	Bids        []BidResponse    `json:"bids"`
	CreatedAt   time.Time        `json:"created_at"   example:"2024-01-15T10:30:00Z"`
} // @name Auction

// AuctionListResponse wraps a page of auctions.
type AuctionListResponse struct {
	Auctions []AuctionSummary `json:"auctions"`
	Limit    int              `json:"limit"  example:"50"`
	Offset   int              `json:"offset" example:"0"`
} // @name AuctionList

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"auction not found"`
} // @name ErrorResponse

// BidTooLowResponse is returned when a bid does not beat the current bid.
type BidTooLowResponse struct {
	Error      string  `json:"error"       example:"bid must be higher than the current bid (125.50)"`
	CurrentBid float64 `json:"current_bid" example:"125.50"`
} // @name BidTooLowResponse

func toUserRef(u models.UserRef) UserRefResponse {
	return UserRefResponse{ID: u.ID, Username: u.Username}
}

func toSummary(a *models.Auction) AuctionSummary {
	s := AuctionSummary{
		ID:          a.ID,
		ItemName:    a.ItemName.String(),
		CurrentBid:  a.CurrentBid,
		Seller:      toUserRef(a.Seller),
		ClosingTime: a.ClosingTime,
		Status:      StatusOpen,
		BidCount:    a.BidCount,
	}
	if a.IsClosed {
		s.Status = StatusClosed
	}
	if a.HighestBidder != nil {
		hb := toUserRef(*a.HighestBidder)
		s.HighestBidder = &hb
	}
	return s
}

func toAuctionResponse(a *models.Auction) AuctionResponse {
	resp := AuctionResponse{
		AuctionSummary: toSummary(a),
		Description:    a.Description,
		StartingBid:    a.StartingBid,
		Bids:           make([]BidResponse, 0, len(a.Bids)),
		CreatedAt:      a.CreatedAt,
	}
	if w := a.Winner(); w != nil {
		ref := toUserRef(*w)
		resp.Winner = &ref
	}
	for _, b := range a.Bids {
		resp.Bids = append(resp.Bids, BidResponse{Bidder: toUserRef(b.Bidder), Amount: b.Amount, Time: b.Time})
	}
	return resp
}

func toListResponse(auctions []*models.Auction, limit, offset int) AuctionListResponse {
	out := AuctionListResponse{Auctions: make([]AuctionSummary, 0, len(auctions)), Limit: limit, Offset: offset}
	for _, a := range auctions {
		out.Auctions = append(out.Auctions, toSummary(a))
	}
	return out
}
