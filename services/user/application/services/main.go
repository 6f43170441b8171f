package services

import (
	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/services/user/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the users context.
type Services struct {
	User *UserService
}

// New wires the user services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewUserRepository(a.Db, a.Config.StoreTimeout)
	return &Services{
		User: NewUserService(repo, a.Clock, a.Logger),
	}
}
