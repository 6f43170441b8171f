package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	"github.com/ghuser/auctionhouse/pkg/logger"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
)

// ContactDirectory resolves a user's email address.
type ContactDirectory interface {
	Email(ctx context.Context, userID uuid.UUID) (string, error)
}

// GetAuctionHandler handles GET /auctions/{id} requests.
type GetAuctionHandler struct {
	svc      *appsvcs.Services
	contacts ContactDirectory
	log      logger.Logger
}

// NewGetAuctionHandler returns the handler. contacts may be nil, in which case
// the seller's email is never included.
func NewGetAuctionHandler(svc *appsvcs.Services, contacts ContactDirectory, log logger.Logger) *GetAuctionHandler {
	return &GetAuctionHandler{svc: svc, contacts: contacts, log: log}
}

// Execute returns one auction with its bid history.
//
//	@Summary		Get auction
//	@Description	Returns the auction with its status, the seller's email, the winner once closed and the full bid history
//	@Tags			auctions
//	@Produce		json
//	@Param			id	path		string	true	"Auction ID"	format(uuid)
//	@Success		200	{object}	AuctionResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/auctions/{id} [get]
func (h *GetAuctionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	auction, err := h.svc.Auction.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := toAuctionResponse(auction)
	if h.contacts != nil {
		// The seller contact is best effort; the auction is still served without it.
		email, err := h.contacts.Email(r.Context(), auction.Seller.ID)
		if err != nil {
			h.log.WarnContext(r.Context(), "seller contact lookup failed",
				"auction_id", auction.ID,
				"seller_id", auction.Seller.ID,
				"error", err,
			)
		} else {
			resp.Seller.Email = email
		}
	}

	httpx.JSON(w, http.StatusOK, resp)
}
