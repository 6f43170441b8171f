// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	auctiondomain "github.com/ghuser/auctionhouse/services/auction/domain"
	userdomain "github.com/ghuser/auctionhouse/services/user/domain"
)

// Production hides 5xx error details from clients. Set once at startup.
var Production bool

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	msg := httpx.SafeError(err, status, Production)

	var tooLow *auctiondomain.BidTooLowError
	switch {
	case errors.As(err, &tooLow):
		httpx.JSONErrorWithDetails(w, status, tooLow.Error(), map[string]any{
			"current_bid": json.Number(tooLow.CurrentBid.StringFixed(2)),
		})
	case errors.Is(err, auctiondomain.ErrConflict),
		errors.Is(err, auctiondomain.ErrStoreUnavailable):
		httpx.JSONErrorWithDetails(w, status, msg, map[string]any{"retryable": true})
	default:
		httpx.JSONError(w, status, msg)
	}
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, auctiondomain.ErrAuctionNotFound),
		errors.Is(err, userdomain.ErrUserNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, auctiondomain.ErrInvalidAuction),
		errors.Is(err, auctiondomain.ErrInvalidAmount),
		errors.Is(err, userdomain.ErrInvalidUser):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, auctiondomain.ErrAuctionClosed),
		errors.Is(err, auctiondomain.ErrBidTooLow),
		errors.Is(err, auctiondomain.ErrConflict),
		errors.Is(err, userdomain.ErrUserAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, auctiondomain.ErrSelfBid):
		return http.StatusForbidden // 403
	case errors.Is(err, userdomain.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized // 401
	case errors.Is(err, auctiondomain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
