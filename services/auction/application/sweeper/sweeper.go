// Package sweeper runs the periodic closing sweep that closes auctions whose
// closing time has passed, even when nobody touches them again.
package sweeper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookgo/clock"

	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/telemetry"
)

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = time.Minute

var (
	ErrAlreadyStarted  = errors.New("sweeper already started")
	ErrSweepInProgress = errors.New("sweep already in progress")
)

// Closer closes every expired open auction and reports how many it closed.
// *services.AuctionService satisfies it.
type Closer interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Sweeper invokes Closer.SweepExpired once at start and then on every tick.
// Cycles never overlap: a tick that arrives while a cycle is running is skipped.
type Sweeper struct {
	closer   Closer
	clock    clock.Clock
	interval time.Duration
	log      logger.Logger
	metrics  *telemetry.AuctionMetrics

	running atomic.Bool

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a Sweeper. metrics may be nil.
func New(closer Closer, clk clock.Clock, interval time.Duration, log logger.Logger, metrics *telemetry.AuctionMetrics) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		closer:   closer,
		clock:    clk,
		interval: interval,
		log:      log,
		metrics:  metrics,
	}
}

// Start launches the sweep loop. It returns immediately; the loop runs until
// ctx is cancelled or Stop is called. A Sweeper can be started once.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	ticker := s.clock.Ticker(s.interval)

	go s.loop(ctx, ticker)

	s.log.InfoContext(ctx, "auction sweeper started", "interval", s.interval.String())
	return nil
}

// Stop cancels the loop and waits for it, including any cycle in flight.
// Safe to call more than once and on a Sweeper that was never started.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunOnce runs a single sweep cycle and returns the number of auctions closed.
// It returns ErrSweepInProgress without doing anything if a cycle is running.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrSweepInProgress
	}
	defer s.running.Store(false)

	start := s.clock.Now()
	closed, err := s.closer.SweepExpired(ctx)
	elapsed := s.clock.Now().Sub(start)
	s.metrics.SweepCompleted(ctx, elapsed, closed, err != nil)

	if err != nil {
		s.log.ErrorContext(ctx, "auction sweep incomplete",
			"closed", closed,
			"duration", elapsed.String(),
			"error", err,
		)
		telemetry.CaptureError(ctx, err, map[string]string{"component": "sweeper"})
		return closed, err
	}

	if closed > 0 {
		s.log.InfoContext(ctx, "auction sweep finished", "closed", closed, "duration", elapsed.String())
	} else {
		s.log.DebugContext(ctx, "auction sweep finished, nothing to close")
	}
	return closed, nil
}

func (s *Sweeper) loop(ctx context.Context, ticker *clock.Ticker) {
	defer close(s.done)
	defer ticker.Stop()

	s.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("auction sweeper stopped")
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

// cycle runs RunOnce for the loop. Failures were already logged and the next
// tick retries, so nothing is returned.
func (s *Sweeper) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); errors.Is(err, ErrSweepInProgress) {
		s.log.WarnContext(ctx, "skipping sweep tick, previous cycle still running")
	}
}
