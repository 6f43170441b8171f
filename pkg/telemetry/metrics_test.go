package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestAuctionMetrics_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background()) //nolint:errcheck

	m, err := NewAuctionMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	ctx := context.Background()
	m.BidAccepted(ctx)
	m.BidAccepted(ctx)
	m.BidRejected(ctx, "too_low")
	m.BidConflict(ctx)
	m.AuctionClosed(ctx, CloseTriggerSweep)
	m.SweepCompleted(ctx, 25*time.Millisecond, 3, false)

	got := collect(t, reader)

	if v := sumOf(t, got["auction_bids_accepted_total"]); v != 2 {
		t.Errorf("bids accepted: got %d, want 2", v)
	}
	if v := sumOf(t, got["auction_bids_rejected_total"]); v != 1 {
		t.Errorf("bids rejected: got %d, want 1", v)
	}
	if v := sumOf(t, got["auction_bid_conflicts_total"]); v != 1 {
		t.Errorf("bid conflicts: got %d, want 1", v)
	}
	if v := sumOf(t, got["auction_closed_total"]); v != 1 {
		t.Errorf("auctions closed: got %d, want 1", v)
	}
	if v := sumOf(t, got["auction_sweep_closed_total"]); v != 3 {
		t.Errorf("sweep closed: got %d, want 3", v)
	}
	if _, ok := got["auction_sweep_duration_seconds"].(metricdata.Histogram[float64]); !ok {
		t.Errorf("expected sweep duration histogram, got %T", got["auction_sweep_duration_seconds"])
	}
}

func TestAuctionMetrics_NilIsNoop(t *testing.T) {
	var m *AuctionMetrics
	ctx := context.Background()
	m.BidAccepted(ctx)
	m.BidRejected(ctx, "closed")
	m.BidConflict(ctx)
	m.AuctionClosed(ctx, CloseTriggerAccess)
	m.SweepCompleted(ctx, time.Second, 0, true)
}
