package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	pkgvalidator "github.com/ghuser/auctionhouse/pkg/validator"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// PlaceBidRequest is the request body for POST /auctions/{id}/bids.
// Amount may be a JSON number or a numeric string.
type PlaceBidRequest struct {
	Amount json.RawMessage `json:"amount" validate:"required" swaggertype:"number" example:"125.50"`
} // @name PlaceBidRequest

// PlaceBidResponse is returned when a bid is accepted.
type PlaceBidResponse struct {
	Message    string       `json:"message"     example:"Bid placed successfully"`
	CurrentBid models.Money `json:"current_bid" swaggertype:"number" example:"125.50"`
} // @name PlaceBidResponse

// PostBidHandler handles POST /auctions/{id}/bids requests.
type PostBidHandler struct {
	svc *appsvcs.Services
}

func NewPostBidHandler(svc *appsvcs.Services) *PostBidHandler {
	return &PostBidHandler{svc: svc}
}

// Execute places a bid on behalf of the signed-in user.
//
//	@Summary		Place bid
//	@Description	Bids must exceed the current bid; sellers cannot bid on their own auctions
//	@Tags			auctions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Auction ID"	format(uuid)
//	@Param			request	body		PlaceBidRequest	true	"Bid"
//	@Success		200		{object}	PlaceBidResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse		"Seller bidding on own auction"
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	BidTooLowResponse	"Auction closed, bid too low or concurrent update"
//	@Failure		422		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/auctions/{id}/bids [post]
func (h *PostBidHandler) Execute(w http.ResponseWriter, r *http.Request) {
	bidder, ok := caller(w, r)
	if !ok {
		return
	}
	auctionID, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[PlaceBidRequest](w, r)
	if !ok {
		return
	}

	amount, err := models.ParseMoneyJSON(req.Amount)
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err))
		return
	}

	auction, err := h.svc.Auction.PlaceBid(r.Context(), auctionID, bidder, amount)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, PlaceBidResponse{
		Message:    "Bid placed successfully",
		CurrentBid: auction.CurrentBid,
	})
}
