package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/auctionhouse/pkg/logger"
)

type closerFunc func(ctx context.Context) (int, error)

func (f closerFunc) SweepExpired(ctx context.Context) (int, error) { return f(ctx) }

type countingCloser struct {
	calls atomic.Int32
	err   error
}

func (c *countingCloser) SweepExpired(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

const interval = 30 * time.Second

func TestSweeper_RunsInitialCycleAndOnTicks(t *testing.T) {
	clk := clock.NewMock()
	closer := &countingCloser{}
	s := New(closer, clk, interval, logger.Discard(), nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return closer.calls.Load() >= 1 }, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		clk.Add(interval)
		return closer.calls.Load() >= 4
	}, 2*time.Second, time.Millisecond)
}

func TestSweeper_FailedCycleDoesNotStopLoop(t *testing.T) {
	clk := clock.NewMock()
	closer := &countingCloser{err: errors.New("store unavailable")}
	s := New(closer, clk, interval, logger.Discard(), nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		clk.Add(interval)
		return closer.calls.Load() >= 3
	}, 2*time.Second, time.Millisecond)
}

func TestSweeper_StartTwice(t *testing.T) {
	s := New(&countingCloser{}, clock.NewMock(), interval, logger.Discard(), nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestSweeper_StopWaitsAndHalts(t *testing.T) {
	clk := clock.NewMock()
	closer := &countingCloser{}
	s := New(closer, clk, interval, logger.Discard(), nil)

	s.Stop() // never started

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool { return closer.calls.Load() >= 1 }, time.Second, time.Millisecond)
	s.Stop()
	s.Stop()

	after := closer.calls.Load()
	clk.Add(interval)
	clk.Add(interval)
	require.Equal(t, after, closer.calls.Load())
}

func TestSweeper_RunOnceNeverOverlaps(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	closer := closerFunc(func(context.Context) (int, error) {
		close(entered)
		<-release
		return 2, nil
	})
	s := New(closer, clock.NewMock(), interval, logger.Discard(), nil)

	result := make(chan int, 1)
	go func() {
		n, err := s.RunOnce(context.Background())
		if err != nil {
			t.Errorf("first cycle: %v", err)
		}
		result <- n
	}()

	<-entered
	_, err := s.RunOnce(context.Background())
	require.ErrorIs(t, err, ErrSweepInProgress)

	close(release)
	require.Equal(t, 2, <-result)
}

func TestSweeper_RunOnceReportsFailure(t *testing.T) {
	sweepErr := errors.New("close auction: store unavailable")
	s := New(closerFunc(func(context.Context) (int, error) { return 3, sweepErr }), clock.NewMock(), 0, logger.Discard(), nil)
	require.Equal(t, DefaultInterval, s.interval)

	closed, err := s.RunOnce(context.Background())
	require.Equal(t, 3, closed)
	require.ErrorIs(t, err, sweepErr)

	// The guard is released after a failed cycle.
	_, err = s.RunOnce(context.Background())
	require.ErrorIs(t, err, sweepErr)
}
