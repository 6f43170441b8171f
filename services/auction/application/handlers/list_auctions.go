package handlers

import (
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/errhttp"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	"github.com/ghuser/auctionhouse/services/auction/domain/repositories"
)

// ListAuctionsHandler serves the auction list endpoints.
type ListAuctionsHandler struct {
	svc *appsvcs.Services
}

func NewListAuctionsHandler(svc *appsvcs.Services) *ListAuctionsHandler {
	return &ListAuctionsHandler{svc: svc}
}

// Open lists auctions still accepting bids, soonest closing first.
//
//	@Summary	List open auctions
//	@Tags		auctions
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 100)"	default(50)
//	@Param		offset	query		int	false	"Records to skip"		default(0)
//	@Success	200		{object}	AuctionListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/auctions [get]
func (h *ListAuctionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	auctions, err := h.svc.Auction.ListOpen(r.Context(), repositories.QueryOpts{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toListResponse(auctions, page.Limit, page.Offset))
}

// Mine lists the signed-in user's own auctions, newest first.
//
//	@Summary	List my auctions
//	@Tags		auctions
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 100)"	default(50)
//	@Param		offset	query		int	false	"Records to skip"		default(0)
//	@Success	200		{object}	AuctionListResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auctions/mine [get]
func (h *ListAuctionsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	auctions, err := h.svc.Auction.ListBySeller(r.Context(), user.ID, repositories.QueryOpts{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toListResponse(auctions, page.Limit, page.Offset))
}

// Bidding lists auctions the signed-in user has bid on.
//
//	@Summary	List auctions I bid on
//	@Tags		auctions
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 100)"	default(50)
//	@Param		offset	query		int	false	"Records to skip"		default(0)
//	@Success	200		{object}	AuctionListResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auctions/bidding [get]
func (h *ListAuctionsHandler) Bidding(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	auctions, err := h.svc.Auction.ListByBidder(r.Context(), user.ID, repositories.QueryOpts{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toListResponse(auctions, page.Limit, page.Offset))
}

func parsePage(w http.ResponseWriter, r *http.Request) (httpx.Page, bool) {
	page, err := httpx.ParsePage(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return httpx.Page{}, false
	}
	return page, true
}
