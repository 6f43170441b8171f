package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/auctionhouse/services/auction/domain"
)

// AuctionCloser closes an auction once its closing time has passed and
// reports whether it performed the transition.
// *services.AuctionService satisfies it.
type AuctionCloser interface {
	CloseIfExpired(ctx context.Context, id uuid.UUID) (bool, error)
}

// AuctionCloseInput is the argument of AuctionCloseWorkflow.
type AuctionCloseInput struct {
	AuctionID   string
	ClosingTime time.Time
}

// AuctionCloseWorkflowID is the workflow ID used for an auction's deadline.
// One deadline workflow exists per auction.
func AuctionCloseWorkflowID(auctionID uuid.UUID) string {
	return "auction-close-" + auctionID.String()
}

// AuctionCloseWorkflow sleeps until the auction's closing time and then
// closes it. It returns whether this workflow performed the close; false
// means a bid or the sweep got there first.
func AuctionCloseWorkflow(ctx workflow.Context, in AuctionCloseInput) (bool, error) {
	log := workflow.GetLogger(ctx)

	if wait := in.ClosingTime.Sub(workflow.Now(ctx)); wait > 0 {
		if err := workflow.Sleep(ctx, wait); err != nil {
			return false, err
		}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	})

	var a *AuctionActivities
	var closed bool
	if err := workflow.ExecuteActivity(ctx, a.CloseAuction, in.AuctionID).Get(ctx, &closed); err != nil {
		return false, err
	}
	log.Info("auction deadline handled", "auction_id", in.AuctionID, "closed", closed)
	return closed, nil
}

// AuctionActivities holds the activities of AuctionCloseWorkflow.
type AuctionActivities struct {
	Closer AuctionCloser
}

// CloseAuction closes the auction if its closing time has passed. An auction
// that is already closed, or not yet due on the store's clock, is left alone
// and false is returned; the closing sweep covers the latter.
func (a *AuctionActivities) CloseAuction(ctx context.Context, auctionID string) (bool, error) {
	id, err := uuid.Parse(auctionID)
	if err != nil {
		return false, temporal.NewNonRetryableApplicationError("invalid auction id", "InvalidAuctionID", err)
	}

	closed, err := a.Closer.CloseIfExpired(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			return false, temporal.NewNonRetryableApplicationError("auction not found", "AuctionNotFound", err)
		}
		return false, err
	}
	if closed {
		activity.GetLogger(ctx).Info("auction closed at deadline", "auction_id", auctionID)
	}
	return closed, nil
}

// ScheduleAuctionClose starts the deadline workflow for an auction. Scheduling
// the same auction twice is not an error.
func (tc *TemporalClient) ScheduleAuctionClose(ctx context.Context, auctionID uuid.UUID, closingTime time.Time) error {
	run, err := tc.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                                       AuctionCloseWorkflowID(auctionID),
		TaskQueue:                                tc.TaskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, AuctionCloseWorkflow, AuctionCloseInput{AuctionID: auctionID.String(), ClosingTime: closingTime})
	if err != nil {
		if isAlreadyStarted(err) {
			return nil
		}
		return fmt.Errorf("start auction close workflow: %w", err)
	}

	tc.log.InfoContext(ctx, "auction close workflow scheduled",
		"auction_id", auctionID,
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID(),
	)
	return nil
}

// NewAuctionWorker returns a worker on the client's task queue with the
// auction workflows registered. The caller starts and stops it.
func (tc *TemporalClient) NewAuctionWorker(closer AuctionCloser) worker.Worker {
	w := worker.New(tc.Client, tc.TaskQueue, worker.Options{})
	RegisterAuctionWorkflows(w, closer)
	return w
}

// RegisterAuctionWorkflows registers AuctionCloseWorkflow and its activities on r.
func RegisterAuctionWorkflows(r worker.Registry, closer AuctionCloser) {
	r.RegisterWorkflow(AuctionCloseWorkflow)
	r.RegisterActivity(&AuctionActivities{Closer: closer})
}

func isAlreadyStarted(err error) bool {
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	return errors.As(err, &started)
}
