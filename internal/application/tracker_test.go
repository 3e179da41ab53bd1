package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/bnema/pnr-status-cli/internal/eventloop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTrackerInputValidatesOnEveryKeystroke(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})

	h.tracker.Input("98765")
	assert.Equal(t, domain.RejectFormat, h.presenter.Last().Rejection)

	h.tracker.Input("9876543210")
	last := h.presenter.Last()
	assert.Equal(t, domain.RejectReason(""), last.Rejection)
	assert.Equal(t, domain.Identifier("9876543210"), last.Identifier)
	assert.Equal(t, "9876543210", last.Input)

	h.tracker.Input("")
	assert.Equal(t, domain.RejectEmpty, h.presenter.Last().Rejection)

	assert.Empty(t, h.provider.Calls())
	assert.Empty(t, h.presenter.Kinds())
}

func TestTrackerSubmitInvalidNotifies(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})

	h.tracker.Submit("12ab")

	require.Len(t, h.presenter.notifications, 1)
	assert.Equal(t, domain.NotifyInvalidIdentifier, h.presenter.notifications[0].Kind)
	assert.Equal(t, "PNR must be a valid 10-digit number.", h.presenter.notifications[0].Message)
	assert.Empty(t, h.provider.Calls())
	assert.Equal(t, 0, h.clock.Armed())
}

func TestTrackerSubmitThenRefreshFailureKeepsRecord(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})

	h.tracker.Submit("9876543210")
	require.NotNil(t, h.presenter.Last().Record)
	assert.Equal(t, 1, h.clock.Armed())

	h.provider.Fail(errProviderDown)
	h.clock.Advance(DefaultRefreshInterval)

	assert.Equal(t, 0, h.clock.Armed())
	last := h.presenter.Last()
	require.NotNil(t, last.Record)
	assert.Equal(t, "Rajdhani Express", last.Record.TrainName)
}

func TestTrackerIgnoresSubmitAndSecondWaitWhileWaiting(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})

	h.tracker.RequestMessageWait()
	h.tracker.RequestMessageWait()
	h.tracker.Submit("9876543210")

	assert.Empty(t, h.provider.Calls())
	assert.Equal(t, 1, h.clock.Armed())
	assert.Empty(t, h.presenter.Kinds())

	h.tracker.CancelMessageWait()
	h.tracker.CancelMessageWait()
	assert.Equal(t, OutcomeCancelled, h.tracker.wait.LastOutcome())
	assert.Equal(t, 0, h.clock.Armed())
}

func TestTrackerCloseReleasesEverything(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})
	h.tracker.Submit("9876543210")
	h.tracker.RequestMessageWait()
	require.Equal(t, 2, h.clock.Armed())
	require.True(t, h.source.Subscribed())

	assert.True(t, h.tracker.Close())

	assert.Equal(t, 0, h.clock.Armed())
	assert.False(t, h.source.Subscribed())
	assert.Equal(t, WaitIdle, h.tracker.wait.State())
	_, active := h.tracker.search.Active()
	assert.False(t, active)
	assert.Empty(t, h.presenter.Kinds())
}

func TestTrackerPermissionDenied(t *testing.T) {
	tests := []struct {
		name string
		gate staticGate
	}{
		{name: "denied", gate: staticGate{granted: false}},
		{name: "gate error counts as denied", gate: staticGate{err: errors.New("no dialog")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(inlineDispatcher{})
			h.tracker.gate = tc.gate

			require.NoError(t, h.tracker.Start(context.Background()))

			assert.False(t, h.presenter.Last().MessagesPermitted)
			assert.Equal(t, []domain.NotificationKind{domain.NotifyPermissionDenied}, h.presenter.Kinds())

			h.tracker.Submit("9876543210")
			assert.NotNil(t, h.presenter.Last().Record)
		})
	}
}

func TestTrackerStartReturnsContextError(t *testing.T) {
	h := newHarness(inlineDispatcher{})
	h.tracker.gate = staticGate{err: errors.New("interrupted")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.tracker.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.presenter.snapshots)
}

func TestTrackerOnEventLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop := eventloop.New()
	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(context.Background())
	}()

	h := newHarness(loop)
	ctx := context.Background()
	require.NoError(t, h.tracker.Start(ctx))

	h.tracker.Submit("1234567890")
	h.tracker.RequestMessageWait()

	var snapshot domain.Snapshot
	require.NoError(t, loop.Do(ctx, func() { snapshot = h.tracker.Snapshot() }))
	assert.True(t, snapshot.MessagesPermitted)
	assert.True(t, snapshot.Waiting)
	require.NotNil(t, snapshot.Record)
	assert.Equal(t, "Shatabdi Express", snapshot.Record.TrainName)

	go h.source.Deliver("Booking ok. PNR: 9876543210. Happy journey")

	require.Eventually(t, func() bool {
		var waiting bool
		var train string
		if err := loop.Do(ctx, func() {
			s := h.tracker.Snapshot()
			waiting = s.Waiting
			if s.Record != nil {
				train = s.Record.TrainName
			}
		}); err != nil {
			return false
		}
		return !waiting && train == "Rajdhani Express"
	}, time.Second, 5*time.Millisecond)

	h.clock.Advance(DefaultRefreshInterval)
	require.NoError(t, loop.Do(ctx, func() {}))
	calls := h.provider.Calls()
	assert.Equal(t, domain.Identifier("9876543210"), calls[len(calls)-1])

	require.True(t, h.tracker.Close())
	loop.Close()
	require.NoError(t, <-errCh)

	assert.Equal(t, 0, h.clock.Armed())
	assert.False(t, h.source.Subscribed())
}

func TestTrackerCloseAfterDispatcherStoppedReportsFailure(t *testing.T) {
	loop := eventloop.New()
	h := newHarness(loop)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	require.NoError(t, h.tracker.Start(ctx))
	h.tracker.Submit("9876543210")
	require.NoError(t, loop.Do(ctx, func() {}))
	require.Equal(t, 1, h.clock.Armed())

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	assert.False(t, h.tracker.Close())
	assert.Equal(t, 1, h.clock.Armed(), "teardown never ran")
}
