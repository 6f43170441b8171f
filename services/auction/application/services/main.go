package services

import (
	"github.com/ghuser/auctionhouse/pkg/app"
	"github.com/ghuser/auctionhouse/pkg/cache"
	"github.com/ghuser/auctionhouse/services/auction/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Auction *AuctionService
}

// New wires all auction application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewAuctionRepository(a.Db, a.EventBus, a.Config.StoreTimeout)

	var auctionCache AuctionCache
	if a.Redis != nil {
		auctionCache = cache.NewAuctionCache(a.Redis, a.Config.AuctionCacheTTL)
	}

	return &Services{
		Auction: NewAuctionService(repo, auctionCache, a.Clock, a.Metrics, a.Logger, Config{
			MaxBidAttempts:   a.Config.BidConflictRetries,
			SweepBatchSize:   a.Config.SweepBatchSize,
			SweepConcurrency: a.Config.SweepConcurrency,
		}),
	}
}
