package events

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/logger"
)

func setupTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

var fastRetry = retryPolicy{attempts: 3, initial: time.Millisecond, max: 5 * time.Millisecond}

// TestRetryWithBackoff_PermanentStopsImmediately verifies backoff.Permanent
// short-circuits the retry loop and keeps the cause matchable.
func TestRetryWithBackoff_PermanentStopsImmediately(t *testing.T) {
	errBadPayload := errors.New("bad payload")
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return backoff.Permanent(errBadPayload)
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(context.Background(), msg, handler, fastRetry, nopLogger())
	if !errors.Is(err, errBadPayload) {
		t.Fatalf("expected errBadPayload, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

type bidPlaced struct {
	AuctionID uuid.UUID `json:"auction_id"`
	Amount    string    `json:"amount"`
}

// TestNewJSONMessage_DecodeJSON verifies metadata and payload survive the helpers.
func TestNewJSONMessage_DecodeJSON(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "place-bid")
	defer span.End()

	eventID := uuid.New()
	want := bidPlaced{AuctionID: uuid.New(), Amount: "15.00"}
	msg, err := NewJSONMessage(ctx, eventID, 1, want)
	if err != nil {
		t.Fatalf("new message: %v", err)
	}

	if msg.Metadata.Get(MetadataEventID) != eventID.String() {
		t.Errorf("event_id: got %q", msg.Metadata.Get(MetadataEventID))
	}
	if msg.Metadata.Get(MetadataEventVersion) != "1" {
		t.Errorf("event_version: got %q", msg.Metadata.Get(MetadataEventVersion))
	}
	if msg.Metadata.Get("traceparent") == "" {
		t.Error("expected traceparent metadata from active span")
	}

	got, err := DecodeJSON[bidPlaced](msg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Errorf("decoded %+v, want %+v", got, want)
	}

	if _, err := DecodeJSON[bidPlaced](message.NewMessage("bad", []byte("{"))); err == nil {
		t.Error("expected decode error for malformed payload")
	}
}

// TestRetryWithBackoff_SuccessOnFirstAttempt verifies no retry occurs on success.
func TestRetryWithBackoff_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return nil
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(context.Background(), msg, handler, fastRetry, nopLogger())
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

// TestRetryWithBackoff_SuccessAfterRetries verifies retry continues until success.
func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		if calls < 3 {
			return errors.New("transient error")
		}
		return nil
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(context.Background(), msg, handler, fastRetry, nopLogger())
	if err != nil {
		t.Fatalf("expected nil after eventual success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

// TestRetryWithBackoff_ExhaustsRetries verifies an error is returned after all retries fail.
func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("permanent error")
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(context.Background(), msg, handler, fastRetry, nopLogger())
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != fastRetry.attempts {
		t.Errorf("expected %d calls, got %d", fastRetry.attempts, calls)
	}
}

// TestRetryWithBackoff_ContextCancelled verifies retry stops when context is canceled.
func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	calls := 0
	handler := func(_ context.Context, _ *message.Message) error {
		calls++
		return errors.New("error")
	}
	msg := message.NewMessage("id", nil)
	err := retryWithBackoff(ctx, msg, handler, retryPolicy{attempts: 3, initial: time.Second, max: time.Second}, nopLogger())
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	// Should have called handler once then exited on ctx.Done
	if calls != 1 {
		t.Errorf("expected 1 call before context cancel, got %d", calls)
	}
}

// TestStartRelay_RequiresOutboxBus verifies a consuming bus refuses to run the relay.
func TestStartRelay_RequiresOutboxBus(t *testing.T) {
	bus := &EventBus{outbox: false}
	if err := bus.StartRelay(context.Background()); err == nil {
		t.Fatal("expected error for non-outbox EventBus")
	}
}

// TestDeliver_AckOnSuccess verifies a handled message is acked and reports nothing.
func TestDeliver_AckOnSuccess(t *testing.T) {
	bus := &EventBus{retry: fastRetry, log: nopLogger()}
	errs := make(chan error, 1)
	msg := message.NewMessage("id", nil)

	bus.deliver(context.Background(), "auction.bid_placed", msg, func(context.Context, *message.Message) error { return nil }, errs)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("expected message to be acked")
	}
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %d", len(errs))
	}
}

// TestDeliver_NackAndReportAfterRetries verifies the topic is attached to the
// reported error and the message is nacked for redelivery.
func TestDeliver_NackAndReportAfterRetries(t *testing.T) {
	bus := &EventBus{retry: fastRetry, log: nopLogger()}
	errs := make(chan error, 1)
	msg := message.NewMessage("id", nil)
	errCacheDown := errors.New("redis unavailable")

	bus.deliver(context.Background(), "auction.closed", msg, func(context.Context, *message.Message) error { return errCacheDown }, errs)

	select {
	case <-msg.Nacked():
	default:
		t.Fatal("expected message to be nacked")
	}
	err := <-errs
	if !errors.Is(err, errCacheDown) {
		t.Fatalf("expected errCacheDown, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "auction.closed: ") {
		t.Errorf("expected topic prefix, got %q", err.Error())
	}
}

// TestDeliver_FullErrorChannelDoesNotBlock verifies a full error channel drops the error.
func TestDeliver_FullErrorChannelDoesNotBlock(t *testing.T) {
	bus := &EventBus{retry: retryPolicy{attempts: 1, initial: time.Millisecond, max: time.Millisecond}, log: nopLogger()}
	errs := make(chan error, 1)
	errs <- errors.New("earlier")
	msg := message.NewMessage("id", nil)

	bus.deliver(context.Background(), "auction.created", msg, func(context.Context, *message.Message) error { return errors.New("boom") }, errs)

	if len(errs) != 1 {
		t.Errorf("expected channel to stay at 1, got %d", len(errs))
	}
}

// TestTracePropagation_RoundTrip verifies the trace injected into a message is
// restored on the consuming side.
func TestTracePropagation_RoundTrip(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish-span")
	defer span.End()
	wantTraceID := span.SpanContext().TraceID()

	msg := message.NewMessage("id", nil)
	injectTrace(ctx, msg)

	got := trace.SpanFromContext(extractTrace(context.Background(), msg)).SpanContext()
	if !got.IsValid() {
		t.Fatal("extracted span context is not valid")
	}
	if got.TraceID() != wantTraceID {
		t.Errorf("trace ID mismatch: want %s, got %s", wantTraceID, got.TraceID())
	}
}
