package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/pkg/httpx"
	"github.com/ghuser/auctionhouse/services/auction/domain/models"
)

// auctionIDParam parses the {id} path parameter, writing 400 on failure.
func auctionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid auction id")
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated user, writing 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request) (models.UserRef, bool) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return models.UserRef{}, false
	}
	return models.UserRef{ID: id.UserID, Username: id.Username}, true
}
