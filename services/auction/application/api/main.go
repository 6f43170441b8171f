package api

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/services/auction/application/handlers"
	appsvcs "github.com/ghuser/auctionhouse/services/auction/application/services"
	usersvcs "github.com/ghuser/auctionhouse/services/user/application/services"
)

// AuctionRoutes registers auction endpoints on the provided chi router.
func AuctionRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), userContacts{users: usersvcs.New(a).User}, a)
}

// userContacts reads seller contact details from the users context.
type userContacts struct {
	users *usersvcs.UserService
}

func (c userContacts) Email(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("seller contact: %w", err)
	}
	return u.Email, nil
}

// Mount registers auction endpoints backed by svcs. Reads are public; writes
// and the per-user lists require a session. contacts may be nil.
func Mount(r chi.Router, svcs *appsvcs.Services, contacts handlers.ContactDirectory, a *app.Application) {
	list := handlers.NewListAuctionsHandler(svcs)

	r.Route("/auctions", func(r chi.Router) {
		r.Get("/", list.Open)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
			r.Post("/", handlers.NewPostAuctionHandler(svcs).Execute)
			r.Get("/mine", list.Mine)
			r.Get("/bidding", list.Bidding)
			r.Post("/{id}/bids", handlers.NewPostBidHandler(svcs).Execute)
		})

		r.Get("/{id}", handlers.NewGetAuctionHandler(svcs, contacts, a.Logger).Execute)
	})
}
