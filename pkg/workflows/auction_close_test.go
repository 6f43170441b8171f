package workflows

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/testsuite"

	"github.com/ghuser/auctionhouse/services/auction/domain"
)

type fakeCloser struct {
	mu     sync.Mutex
	calls  []uuid.UUID
	closed bool
	err    error
}

func (f *fakeCloser) CloseIfExpired(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	return f.closed, f.err
}

func runCloseWorkflow(t *testing.T, closer *fakeCloser, start, closingTime time.Time, auctionID string) (bool, error) {
	t.Helper()
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.SetStartTime(start)
	env.RegisterWorkflow(AuctionCloseWorkflow)
	env.RegisterActivity(&AuctionActivities{Closer: closer})

	env.ExecuteWorkflow(AuctionCloseWorkflow, AuctionCloseInput{AuctionID: auctionID, ClosingTime: closingTime})
	require.True(t, env.IsWorkflowCompleted())
	if err := env.GetWorkflowError(); err != nil {
		return false, err
	}
	var closed bool
	require.NoError(t, env.GetWorkflowResult(&closed))
	return closed, nil
}

func TestAuctionCloseWorkflow_ClosesAtDeadline(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()
	closer := &fakeCloser{closed: true}

	closed, err := runCloseWorkflow(t, closer, start, start.Add(48*time.Hour), id.String())
	require.NoError(t, err)
	require.True(t, closed)
	require.Equal(t, []uuid.UUID{id}, closer.calls)
}

func TestAuctionCloseWorkflow_AlreadyClosed(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	closer := &fakeCloser{closed: false}

	closed, err := runCloseWorkflow(t, closer, start, start.Add(-time.Minute), uuid.NewString())
	require.NoError(t, err)
	require.False(t, closed)
	require.Len(t, closer.calls, 1)
}

func TestAuctionCloseWorkflow_NotFoundIsNotRetried(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	closer := &fakeCloser{err: fmt.Errorf("close auction: %w", domain.ErrAuctionNotFound)}

	_, err := runCloseWorkflow(t, closer, start, start.Add(time.Hour), uuid.NewString())
	require.Error(t, err)
	require.Len(t, closer.calls, 1)
}

func TestAuctionCloseWorkflow_InvalidID(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	closer := &fakeCloser{closed: true}

	_, err := runCloseWorkflow(t, closer, start, start, "not-a-uuid")
	require.Error(t, err)
	require.Empty(t, closer.calls)
}

func TestAuctionCloseWorkflowID(t *testing.T) {
	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	require.Equal(t, "auction-close-123e4567-e89b-12d3-a456-426614174000", AuctionCloseWorkflowID(id))
}

func TestIsAlreadyStarted(t *testing.T) {
	started := serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req", "run")
	require.True(t, isAlreadyStarted(fmt.Errorf("start: %w", started)))
	require.False(t, isAlreadyStarted(errors.New("unavailable")))
}
