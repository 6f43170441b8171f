// Package subscribers consumes auction domain events in the worker process.
package subscribers

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/auctionhouse/pkg/events"
	"github.com/ghuser/auctionhouse/pkg/logger"
	domainevents "github.com/ghuser/auctionhouse/services/auction/domain/events"
)

// CacheRefresher reloads an auction into the read-model cache.
type CacheRefresher interface {
	RefreshCache(ctx context.Context, id uuid.UUID) error
}

// DeadlineScheduler arranges for an auction to be closed at its closing time.
type DeadlineScheduler interface {
	ScheduleAuctionClose(ctx context.Context, id uuid.UUID, closingTime time.Time) error
}

// Subscriber is the subscribing half of *events.EventBus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// Handlers holds the auction event handlers.
// Handlers must be idempotent: the event bus redelivers on failure.
type Handlers struct {
	cache     CacheRefresher
	scheduler DeadlineScheduler
	log       logger.Logger
}

// New returns Handlers. scheduler may be nil, in which case deadlines are
// left to the closing sweep.
func New(cache CacheRefresher, scheduler DeadlineScheduler, log logger.Logger) *Handlers {
	return &Handlers{cache: cache, scheduler: scheduler, log: log}
}

// Register subscribes every handler on bus. Subscriber errors are drained in
// the background and logged until ctx is cancelled.
func (h *Handlers) Register(ctx context.Context, bus Subscriber) error {
	routes := map[string]func(context.Context, *message.Message) error{
		domainevents.TopicAuctionCreated:   h.HandleCreated,
		domainevents.TopicAuctionBidPlaced: h.HandleBidPlaced,
		domainevents.TopicAuctionClosed:    h.HandleClosed,
	}

	topics := make([]string, 0, len(routes))
	for topic, handler := range routes {
		errCh, err := bus.Subscribe(ctx, topic, handler)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func() {
			for err := range errCh {
				h.log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
		topics = append(topics, topic)
	}

	h.log.Info("event subscribers registered", "topics", topics)
	return nil
}

// HandleCreated schedules the deadline workflow and warms the cache.
func (h *Handlers) HandleCreated(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[domainevents.AuctionCreatedEvent](msg)
	if err != nil {
		return err
	}

	if h.scheduler != nil {
		if err := h.scheduler.ScheduleAuctionClose(ctx, evt.AuctionID, evt.ClosingTime); err != nil {
			return fmt.Errorf("schedule close of auction %s: %w", evt.AuctionID, err)
		}
	}

	h.refresh(ctx, evt.AuctionID, domainevents.TopicAuctionCreated)
	return nil
}

// HandleBidPlaced refreshes the cached snapshot after a bid.
func (h *Handlers) HandleBidPlaced(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[domainevents.AuctionBidPlacedEvent](msg)
	if err != nil {
		return err
	}
	h.refresh(ctx, evt.AuctionID, domainevents.TopicAuctionBidPlaced)
	return nil
}

// HandleClosed refreshes the cached snapshot after a close.
func (h *Handlers) HandleClosed(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[domainevents.AuctionClosedEvent](msg)
	if err != nil {
		return err
	}
	h.refresh(ctx, evt.AuctionID, domainevents.TopicAuctionClosed)
	return nil
}

// refresh is best-effort: the API process already writes snapshots and
// readers fall back to the store on a miss.
func (h *Handlers) refresh(ctx context.Context, id uuid.UUID, topic string) {
	if err := h.cache.RefreshCache(ctx, id); err != nil {
		h.log.WarnContext(ctx, "cache refresh failed", "topic", topic, "auction_id", id, "error", err)
		return
	}
	h.log.DebugContext(ctx, "cache refreshed", "topic", topic, "auction_id", id)
}
