package application

import (
	"testing"
	"time"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFoundDisplaysRecordAndArmsRefresh(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})

	h.tracker.search.StartSearch("9876543210")

	last := h.presenter.Last()
	require.NotNil(t, last.Record)
	assert.Equal(t, sampleRecord, *last.Record)
	assert.False(t, last.Loading)
	assert.True(t, last.Refreshing)
	assert.Equal(t, 1, h.clock.Armed())

	id, ok := h.tracker.search.Active()
	assert.True(t, ok)
	assert.Equal(t, domain.Identifier("9876543210"), id)
}

func TestSearchRestartKeepsExactlyOneTimer(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})

	for i := 0; i < 5; i++ {
		h.tracker.search.StartSearch("9876543210")
		assert.Equal(t, 1, h.clock.Armed())
	}

	h.tracker.search.StartSearch("1234567890")
	assert.Equal(t, 1, h.clock.Armed())

	id, ok := h.tracker.search.Active()
	require.True(t, ok)
	assert.Equal(t, domain.Identifier("1234567890"), id)

	h.clock.Advance(time.Second)
	calls := h.provider.Calls()
	assert.Equal(t, domain.Identifier("1234567890"), calls[len(calls)-1])
	assert.Equal(t, 1, h.clock.Armed())
}

func TestSearchRefreshReplacesRecordEachInterval(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})
	h.tracker.search.StartSearch("9876543210")

	moved := sampleRecord
	moved.CurrentLocation = "Prayagraj Junction"
	h.provider.Put(moved)

	h.clock.Advance(999 * time.Millisecond)
	assert.Equal(t, "Kanpur Central", h.presenter.Last().Record.CurrentLocation)

	h.clock.Advance(time.Millisecond)
	assert.Equal(t, "Prayagraj Junction", h.presenter.Last().Record.CurrentLocation)
	assert.Equal(t, 1, h.clock.Armed())

	h.clock.Advance(3 * time.Second)
	assert.Len(t, h.provider.Calls(), 5)
}

func TestSearchRefreshFailureStopsCycleAndKeepsLastRecord(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})
	h.tracker.search.StartSearch("9876543210")
	require.Equal(t, 1, h.clock.Armed())

	h.provider.Fail(errProviderDown)
	h.clock.Advance(time.Second)

	assert.Equal(t, 0, h.clock.Armed())
	_, ok := h.tracker.search.Active()
	assert.False(t, ok)

	last := h.presenter.Last()
	require.NotNil(t, last.Record)
	assert.Equal(t, sampleRecord, *last.Record)
	assert.False(t, last.Refreshing)

	calls := len(h.provider.Calls())
	h.clock.Advance(10 * time.Second)
	assert.Len(t, h.provider.Calls(), calls)
	assert.Empty(t, h.presenter.Kinds())
}

func TestSearchRefreshTreatsVanishedRecordAsFailure(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})
	h.tracker.search.StartSearch("9876543210")

	h.provider.mu.Lock()
	delete(h.provider.records, "9876543210")
	h.provider.mu.Unlock()

	h.clock.Advance(time.Second)
	assert.Equal(t, 0, h.clock.Armed())
	assert.NotNil(t, h.presenter.Last().Record)
}

func TestSearchNotFoundLeavesPriorSessionRunning(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})
	h.tracker.search.StartSearch("9876543210")

	h.tracker.search.StartSearch("5555555555")

	last := h.presenter.Last()
	assert.Nil(t, last.Record)
	assert.False(t, last.Loading)
	assert.Contains(t, h.presenter.Kinds(), domain.NotifyRecordNotFound)

	id, ok := h.tracker.search.Active()
	require.True(t, ok)
	assert.Equal(t, domain.Identifier("9876543210"), id)
	assert.Equal(t, 1, h.clock.Armed())
}

func TestSearchProviderFailureNotifiesWithoutRetry(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})
	h.provider.Fail(errProviderDown)

	h.tracker.search.StartSearch("9876543210")

	assert.Contains(t, h.presenter.Kinds(), domain.NotifyLookupFailed)
	assert.Equal(t, 0, h.clock.Armed())

	h.clock.Advance(5 * time.Second)
	assert.Len(t, h.provider.Calls(), 1)
}

func TestStopSearchIsIdempotent(t *testing.T) {
	h := newStartedHarness(inlineDispatcher{})

	h.tracker.search.StopSearch()
	h.tracker.search.StartSearch("9876543210")
	h.tracker.search.StopSearch()
	h.tracker.search.StopSearch()

	assert.Equal(t, 0, h.clock.Armed())
	assert.False(t, h.presenter.Last().Refreshing)
	assert.NotNil(t, h.presenter.Last().Record)
}

func TestSearchIgnoresTickFromSupersededSession(t *testing.T) {
	dispatcher := &queueDispatcher{}
	h := newStartedHarness(dispatcher)
	dispatcher.Flush()

	h.tracker.search.StartSearch("9876543210")
	h.clock.Advance(time.Second)
	require.Len(t, dispatcher.queue, 1)

	h.tracker.search.StartSearch("1234567890")
	dispatcher.Flush()

	assert.Equal(t, []domain.Identifier{"9876543210", "1234567890"}, h.provider.Calls())
	assert.Equal(t, otherRecord, *h.presenter.Last().Record)
	assert.Equal(t, 1, h.clock.Armed())
}
