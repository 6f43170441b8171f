// Package events carries auction domain events between the API and worker
// processes over PostgreSQL, using Watermill's SQL transport.
//
// Events are written through an outbox. A repository obtains a publisher with
// NewTxPublisher, so the event row commits or rolls back together with the
// auction row. In the API process the relay (StartRelay) moves committed
// events from the outbox topic to their destination topics.
//
// Worker processes subscribe in one consumer group, so each event is handled
// by a single worker. Handlers must be idempotent: a failing handler is retried
// in process with exponential backoff and then nacked for redelivery.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/logger"
)

const (
	outboxTopic        = "auction_outbox"
	relayConsumerGroup = "auction-outbox-relay"
	errChanSize        = 100
	drainTimeout       = 30 * time.Second
)

// retryPolicy bounds in-process handler retries before a message is nacked.
type retryPolicy struct {
	attempts int
	initial  time.Duration
	max      time.Duration
}

var defaultRetry = retryPolicy{attempts: 3, initial: time.Second, max: 10 * time.Second}

// EventBus subscribes to auction topics and, in outbox mode, hands out
// transactional publishers and runs the relay.
type EventBus struct {
	db         *sql.DB
	subscriber *watermillsql.Subscriber
	relay      *forwarder.Forwarder
	outbox     bool
	retry      retryPolicy
	log        logger.Logger
	wlog       watermill.LoggerAdapter
	handlers   sync.WaitGroup
}

// NewEventBus returns a consuming bus for worker processes. Every bus created
// with the same cfg.ServiceName joins one consumer group.
func NewEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return open(cfg, log, false)
}

// NewOutboxEventBus returns a bus whose transactional publishers write to the
// outbox topic. Call StartRelay once to begin delivering outbox events.
func NewOutboxEventBus(cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return open(cfg, log, true)
}

func open(cfg *config.Config, log logger.Logger, outbox bool) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	bus := &EventBus{
		db:     db,
		outbox: outbox,
		retry:  defaultRetry,
		log:    log,
		wlog:   &watermillLogger{log: log},
	}

	bus.subscriber, err = bus.newSubscriber(cfg.ServiceName + "-worker")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return bus, nil
}

func (q *EventBus) newSubscriber(group string) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(
		q.db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    group,
		},
		q.wlog,
	)
	if err != nil {
		return nil, fmt.Errorf("events: subscriber for group %s: %w", group, err)
	}
	return sub, nil
}

// StartRelay starts delivering outbox events to their destination topics and
// returns once the relay is running. It may be called once, on an outbox bus.
func (q *EventBus) StartRelay(ctx context.Context) error {
	switch {
	case !q.outbox:
		return errors.New("events: relay requires an outbox bus")
	case q.relay != nil:
		return errors.New("events: relay already started")
	}

	outboxSub, err := q.newSubscriber(relayConsumerGroup)
	if err != nil {
		return err
	}
	// Destination tables are created on first delivery to each topic.
	destination, err := watermillsql.NewPublisher(
		q.db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		q.wlog,
	)
	if err != nil {
		_ = outboxSub.Close()
		return fmt.Errorf("events: relay publisher: %w", err)
	}

	relay, err := forwarder.NewForwarder(outboxSub, destination, q.wlog, forwarder.Config{
		ForwarderTopic: outboxTopic,
	})
	if err != nil {
		_ = destination.Close()
		_ = outboxSub.Close()
		return fmt.Errorf("events: relay: %w", err)
	}
	q.relay = relay

	q.handlers.Add(1)
	go func() {
		defer q.handlers.Done()
		if err := relay.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: outbox relay stopped", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: outbox relay stopped")
	}()

	select {
	case <-relay.Running():
		q.log.InfoContext(ctx, "events: outbox relay running", "topic", outboxTopic)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for outbox relay: %w", ctx.Err())
	}
}

// NewTxPublisher returns a publisher that writes inside tx. On an outbox bus
// messages are enveloped for the relay; otherwise they go straight to their
// topic. Topic tables must already exist; subscribers and the relay create them.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(
		tx,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: false,
		},
		q.wlog,
	)
	if err != nil {
		return nil, fmt.Errorf("events: tx publisher: %w", err)
	}
	if !q.outbox {
		return pub, nil
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxTopic}), nil
}

// Subscribe delivers topic messages to handler until ctx is cancelled.
// The handler context carries the trace propagated from the publisher.
//
// A message is acked when handler returns nil. Errors are retried according
// to the bus retry policy, and backoff.Permanent(err) stops retrying at once.
// When retries are exhausted the message is nacked and the error is sent on the
// returned channel, which the caller must drain.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	msgs, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe %s: %w", topic, err)
	}

	errs := make(chan error, errChanSize)
	q.handlers.Add(1)
	go func() {
		defer q.handlers.Done()
		defer close(errs)
		for msg := range msgs {
			q.deliver(extractTrace(ctx, msg), topic, msg, handler, errs)
		}
	}()
	return errs, nil
}

func (q *EventBus) deliver(ctx context.Context, topic string, msg *message.Message, handler func(context.Context, *message.Message) error, errs chan<- error) {
	err := retryWithBackoff(ctx, msg, handler, q.retry, q.log)
	if err == nil {
		msg.Ack()
		return
	}
	msg.Nack()
	select {
	case errs <- fmt.Errorf("%s: %w", topic, err):
	default:
		q.log.ErrorContext(ctx, "events: error channel full, dropping handler error",
			"topic", topic,
			"message_uuid", msg.UUID,
			"error", err,
		)
	}
}

// retryWithBackoff runs handler until it succeeds, returns a permanent error,
// or p.attempts is reached. The last error is returned wrapped.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler func(context.Context, *message.Message) error,
	p retryPolicy,
	log logger.Logger,
) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initial
	b.MaxInterval = p.max

	attempt := 0
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			attempt++
			return struct{}{}, handler(ctx, msg)
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WarnContext(ctx, "events: handler failed, retrying",
				"attempt", attempt,
				"max_attempts", p.attempts,
				"next_delay", next.String(),
				"message_uuid", msg.UUID,
				"error", err,
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("events: handler failed after %d attempts: %w", attempt, err)
	}
	return nil
}

// Ping checks the event store connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping: %w", err)
	}
	return nil
}

// Close stops the subscriber and the relay, waits up to 30s for in-flight
// handlers, then closes the connection. Every step runs even if an earlier one
// fails; the errors are joined.
func (q *EventBus) Close() error {
	var errs []error
	if err := q.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: close subscriber: %w", err))
	}
	if q.relay != nil {
		if err := q.relay.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: close relay: %w", err))
		}
	}

	drained := make(chan struct{})
	go func() {
		q.handlers.Wait()
		close(drained)
	}()
	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		q.log.Error("events: in-flight handlers still running at shutdown", "waited", drainTimeout.String())
	}

	if err := q.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: close db: %w", err))
	}
	return errors.Join(errs...)
}

// watermillLogger routes Watermill's logging through logger.Logger.
type watermillLogger struct{ log logger.Logger }

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.log.Error(msg, append(logArgs(fields), "error", err)...)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.log.Info(msg, logArgs(fields)...)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.log.Debug(msg, logArgs(fields)...)
}

// Trace is logged at debug level; slog has no trace level.
func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.log.Debug(msg, logArgs(fields)...)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{log: l.log.With(logArgs(fields)...)}
}

func logArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
