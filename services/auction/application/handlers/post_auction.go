package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	pkgvalidator "github.com/ghuser/auctionhouse/pkg/validator"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	"github.com/ghuser/auctionhouse/services/auction/domain"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// CreateAuctionRequest is the request body for POST /auctions.
type CreateAuctionRequest struct {
	ItemName    string      `json:"item_name"    validate:"required,max=255"  example:"Vintage camera"`
	Description string      `json:"description"  validate:"required,max=5000" example:"Fully working, with original case"`
	StartingBid json.Number `json:"starting_bid" validate:"required,money"    swaggertype:"number" example:"100.00"`
	ClosingTime time.Time   `json:"closing_time" validate:"required"          example:"2024-01-16T10:30:00Z"`
} // @name CreateAuctionRequest

// PostAuctionHandler handles POST /auctions requests.
type PostAuctionHandler struct {
	svc *appsvcs.Services
}

// NewPostAuctionHandler returns a PostAuctionHandler backed by the given services.
func NewPostAuctionHandler(svc *appsvcs.Services) *PostAuctionHandler {
	return &PostAuctionHandler{svc: svc}
}

// Execute lists a new item for auction on behalf of the signed-in user.
//
//	@Summary		Create auction
//	@Description	Lists an item for auction; the caller becomes the seller
//	@Tags			auctions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateAuctionRequest	true	"Auction creation request"
//	@Success		201		{object}	AuctionResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/auctions [post]
func (h *PostAuctionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	seller, ok := caller(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateAuctionRequest](w, r)
	if !ok {
		return
	}

	startingBid, err := models.ParseMoney(req.StartingBid.String())
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: starting bid: %w", domain.ErrInvalidAuction, err))
		return
	}

	auction, err := h.svc.Auction.Create(r.Context(), seller, req.ItemName, req.Description, startingBid, req.ClosingTime)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toAuctionResponse(auction))
}
