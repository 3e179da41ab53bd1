package application

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/bnema/pnr-status-cli/internal/idgen"
	"github.com/bnema/pnr-status-cli/internal/ports"
	"go.uber.org/zap"
)

type Dependencies struct {
	Provider   ports.LookupProvider
	Source     ports.MessageSource
	Gate       ports.PermissionGate
	Dispatcher ports.Dispatcher
	Presenter  Presenter
	Clock      ports.Clock
	Metrics    ports.Metrics
	Logger     *zap.Logger
	NewWaitID  func() (string, error)
}

type Options struct {
	RefreshInterval time.Duration
	WaitTimeout     time.Duration
}

// Tracker wires the search and wait coordinators behind the user intents.
// Intents only post onto the dispatcher, so they are safe to call from any
// goroutine, including a UI event loop.
type Tracker struct {
	dispatch ports.Dispatcher
	gate     ports.PermissionGate
	state    *stateStore
	search   *SearchCoordinator
	wait     *WaitCoordinator
	logger   *zap.Logger
}

func NewTracker(deps Dependencies, opts Options) *Tracker {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.NewWaitID == nil {
		deps.NewWaitID = idgen.NewWaitID
	}

	state := newStateStore(deps.Presenter)
	search := newSearchCoordinator(deps, opts.RefreshInterval, state)

	return &Tracker{
		dispatch: deps.Dispatcher,
		gate:     deps.Gate,
		state:    state,
		search:   search,
		wait:     newWaitCoordinator(deps, opts.WaitTimeout, state, search),
		logger:   deps.Logger,
	}
}

// Start asks the permission gate once. The request runs on the caller's
// goroutine; only its result is handed to the dispatcher.
func (t *Tracker) Start(ctx context.Context) error {
	granted := false
	if t.gate != nil {
		var err error
		granted, err = t.gate.Request(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			t.logger.Warn("permission request failed", zap.Error(err))
			granted = false
		}
	}

	t.dispatch.Post(func() { t.applyPermission(granted) })
	return nil
}

func (t *Tracker) Input(text string) {
	t.dispatch.Post(func() { t.validate(text) })
}

func (t *Tracker) Submit(text string) {
	t.dispatch.Post(func() { t.submit(text) })
}

func (t *Tracker) RequestMessageWait() {
	t.dispatch.Post(t.requestMessageWait)
}

func (t *Tracker) CancelMessageWait() {
	t.dispatch.Post(func() {
		if err := t.wait.CancelWait(); err != nil {
			t.logger.Debug("cancel ignored", zap.Error(err))
		}
	})
}

// Close schedules release of the refresh timer and any open wait session. It
// must be called before the dispatcher stops; it reports false when the
// dispatcher no longer accepts work and nothing was released.
func (t *Tracker) Close() bool {
	if !t.dispatch.Post(t.teardown) {
		t.logger.Warn("dispatcher stopped before teardown; timers and subscription not released")
		return false
	}
	return true
}

// Snapshot returns the current state. Call it on the dispatcher goroutine or
// after the dispatcher stopped.
func (t *Tracker) Snapshot() domain.Snapshot {
	return t.state.current()
}

func (t *Tracker) applyPermission(granted bool) {
	t.wait.SetPermitted(granted)
	t.state.update(func(s *domain.Snapshot) { s.MessagesPermitted = granted })
	if !granted {
		t.logger.Info("message wait limited to timeout", zap.Error(domain.ErrPermissionDenied))
		t.state.notify(domain.NotifyPermissionDenied, "Permission Denied", "Cannot access messages without permission.")
	}
}

func (t *Tracker) validate(text string) (domain.Identifier, error) {
	id, err := domain.ValidateIdentifier(text)
	t.state.update(func(s *domain.Snapshot) {
		s.Input = text
		s.Identifier = id
		s.Rejection = domain.RejectionOf(err)
	})
	return id, err
}

func (t *Tracker) submit(text string) {
	if t.wait.State() == WaitWaiting {
		t.logger.Debug("submit ignored while waiting for a message")
		return
	}

	id, err := t.validate(text)
	if err != nil {
		t.state.notify(domain.NotifyInvalidIdentifier, "Invalid PNR", domain.RejectionOf(err).Message())
		return
	}

	t.search.StartSearch(id)
}

func (t *Tracker) requestMessageWait() {
	err := t.wait.BeginWait()
	if err == nil {
		return
	}
	if errors.Is(err, ErrWaitInProgress) {
		t.logger.Debug("wait request ignored", zap.Error(err))
		return
	}

	t.logger.Warn("cannot wait for message", zap.Error(err))
	t.state.notify(domain.NotifyMessagesUnavailable, "Messages Unavailable", err.Error())
}

func (t *Tracker) teardown() {
	t.search.StopSearch()
	if t.wait.State() == WaitWaiting {
		_ = t.wait.CancelWait()
	}
}
