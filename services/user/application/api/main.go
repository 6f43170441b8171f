package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/auth"
	"github.com/ghuser/auctionhouse/services/user/application/handlers"
	appsvcs "github.com/ghuser/auctionhouse/services/user/application/services"
)

// UserRoutes registers the /auth endpoints on the provided chi router.
func UserRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a)
}

// Mount registers the /auth endpoints backed by svcs.
func Mount(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	h := handlers.NewAuthHandler(svcs, a.SessionStore)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(auth.RequireAuth(a.SessionStore, a.Logger)).Get("/me", h.Me)
	})
}
