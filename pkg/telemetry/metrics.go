package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Close triggers recorded on auctions_closed_total.
const (
	CloseTriggerSweep    = "sweep"
	CloseTriggerAccess   = "access"
	CloseTriggerDeadline = "deadline"
	CloseTriggerManual   = "manual"
)

// AuctionMetrics holds the bidding and closing instruments.
// A nil *AuctionMetrics is valid and records nothing.
type AuctionMetrics struct {
	bidsAccepted   metric.Int64Counter
	bidsRejected   metric.Int64Counter
	bidConflicts   metric.Int64Counter
	auctionsClosed metric.Int64Counter
	sweepDuration  metric.Float64Histogram
	sweepClosed    metric.Int64Counter
}

// NewAuctionMetrics registers the auction instruments on meter.
func NewAuctionMetrics(meter metric.Meter) (*AuctionMetrics, error) {
	var m AuctionMetrics
	var err error

	if m.bidsAccepted, err = meter.Int64Counter("auction_bids_accepted_total",
		metric.WithDescription("Bids accepted and persisted")); err != nil {
		return nil, fmt.Errorf("bids accepted counter: %w", err)
	}
	if m.bidsRejected, err = meter.Int64Counter("auction_bids_rejected_total",
		metric.WithDescription("Bids rejected, by reason")); err != nil {
		return nil, fmt.Errorf("bids rejected counter: %w", err)
	}
	if m.bidConflicts, err = meter.Int64Counter("auction_bid_conflicts_total",
		metric.WithDescription("Optimistic write conflicts while placing bids")); err != nil {
		return nil, fmt.Errorf("bid conflicts counter: %w", err)
	}
	if m.auctionsClosed, err = meter.Int64Counter("auction_closed_total",
		metric.WithDescription("Auctions transitioned to closed, by trigger")); err != nil {
		return nil, fmt.Errorf("auctions closed counter: %w", err)
	}
	if m.sweepDuration, err = meter.Float64Histogram("auction_sweep_duration_seconds",
		metric.WithDescription("Duration of closing sweep cycles"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("sweep duration histogram: %w", err)
	}
	if m.sweepClosed, err = meter.Int64Counter("auction_sweep_closed_total",
		metric.WithDescription("Auctions closed by sweep cycles")); err != nil {
		return nil, fmt.Errorf("sweep closed counter: %w", err)
	}
	return &m, nil
}

func (m *AuctionMetrics) BidAccepted(ctx context.Context) {
	if m == nil {
		return
	}
	m.bidsAccepted.Add(ctx, 1)
}

// BidRejected counts a rejected bid; reason is a short stable label such as "too_low".
func (m *AuctionMetrics) BidRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.bidsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *AuctionMetrics) BidConflict(ctx context.Context) {
	if m == nil {
		return
	}
	m.bidConflicts.Add(ctx, 1)
}

// AuctionClosed counts one OPEN to CLOSED transition.
func (m *AuctionMetrics) AuctionClosed(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	m.auctionsClosed.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}

// SweepCompleted records one sweep cycle.
func (m *AuctionMetrics) SweepCompleted(ctx context.Context, d time.Duration, closed int, failed bool) {
	if m == nil {
		return
	}
	m.sweepDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("failed", failed)))
	m.sweepClosed.Add(ctx, int64(closed))
}
