package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/bnema/pnr-status-cli/internal/ports"
	"go.uber.org/zap"
)

const DefaultWaitTimeout = 10 * time.Second

var (
	ErrWaitInProgress = errors.New("already waiting for a message")
	ErrNotWaiting     = errors.New("not waiting for a message")
)

type WaitState string

const (
	WaitIdle    WaitState = "idle"
	WaitWaiting WaitState = "waiting"
)

type WaitOutcome string

const (
	OutcomeMessage   WaitOutcome = "message"
	OutcomeTimeout   WaitOutcome = "timeout"
	OutcomeCancelled WaitOutcome = "cancelled"
)

type searchStarter interface {
	StartSearch(id domain.Identifier)
}

// WaitCoordinator opens bounded windows during which an inbound message may
// supply a PNR. Each session holds a subscription and a timeout together and
// resolves exactly once: the first of message, timeout or cancel to reach the
// dispatcher releases both handles and clears the slot, so anything queued
// behind it for the same session is dropped.
//
// All methods must run on the dispatcher goroutine.
type WaitCoordinator struct {
	source   ports.MessageSource
	clock    ports.Clock
	dispatch ports.Dispatcher
	timeout  time.Duration
	state    *stateStore
	search   searchStarter
	metrics  ports.Metrics
	logger   *zap.Logger
	newID    func() (string, error)

	permitted   bool
	session     *waitSession
	lastOutcome WaitOutcome
}

type waitSession struct {
	id          string
	startedAt   time.Time
	unsubscribe func()
	timer       ports.Timer
}

func newWaitCoordinator(deps Dependencies, timeout time.Duration, state *stateStore, search searchStarter) *WaitCoordinator {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}

	return &WaitCoordinator{
		source:   deps.Source,
		clock:    deps.Clock,
		dispatch: deps.Dispatcher,
		timeout:  timeout,
		state:    state,
		search:   search,
		metrics:  deps.Metrics,
		logger:   deps.Logger.Named("wait"),
		newID:    deps.NewWaitID,
	}
}

// SetPermitted controls whether new sessions actually subscribe. Without
// permission a session still opens but can only end by timeout or cancel.
func (c *WaitCoordinator) SetPermitted(permitted bool) {
	c.permitted = permitted
}

func (c *WaitCoordinator) State() WaitState {
	if c.session != nil {
		return WaitWaiting
	}
	return WaitIdle
}

// LastOutcome returns how the most recent session ended, or "" if none has.
func (c *WaitCoordinator) LastOutcome() WaitOutcome {
	return c.lastOutcome
}

func (c *WaitCoordinator) BeginWait() error {
	if c.session != nil {
		return ErrWaitInProgress
	}

	id, err := c.newID()
	if err != nil {
		return fmt.Errorf("begin wait: %w", err)
	}

	session := &waitSession{id: id, startedAt: c.clock.Now(), unsubscribe: func() {}}
	if c.permitted && c.source != nil {
		unsubscribe, err := c.source.Subscribe(func(text string) {
			c.dispatch.Post(func() { c.handleMessage(session, text) })
		})
		if err != nil {
			return fmt.Errorf("subscribe to messages: %w", err)
		}
		session.unsubscribe = unsubscribe
	}
	session.timer = c.clock.AfterFunc(c.timeout, func() {
		c.dispatch.Post(func() { c.handleTimeout(session) })
	})

	c.session = session
	c.metrics.WaitActive(true)
	c.logger.Info("waiting for message",
		zap.String("wait_id", id),
		zap.Duration("timeout", c.timeout),
		zap.Bool("permitted", c.permitted))

	c.state.update(func(s *domain.Snapshot) { s.Waiting = true })
	return nil
}

func (c *WaitCoordinator) CancelWait() error {
	if c.session == nil {
		return ErrNotWaiting
	}

	c.resolve(c.session, OutcomeCancelled)
	c.state.update(func(s *domain.Snapshot) { s.Waiting = false })
	return nil
}

func (c *WaitCoordinator) handleMessage(session *waitSession, text string) {
	if c.session != session {
		return
	}
	c.resolve(session, OutcomeMessage)

	body := text
	extracted, err := domain.ExtractIdentifier(text)
	var id domain.Identifier
	if err == nil {
		id, err = domain.ValidateIdentifier(extracted)
	}
	if err != nil {
		c.logger.Info("message carried no pnr", zap.String("wait_id", session.id))
		c.state.update(func(s *domain.Snapshot) {
			s.Waiting = false
			s.LastMessage = &body
		})
		c.state.notify(domain.NotifyIdentifierMissing, "PNR Not Found", "No PNR found in the recent message.")
		return
	}

	c.logger.Info("pnr detected in message", zap.String("wait_id", session.id), zap.String("pnr", id.String()))
	c.state.update(func(s *domain.Snapshot) {
		s.Waiting = false
		s.LastMessage = &body
		s.Input = extracted
		s.Identifier = id
		s.Rejection = ""
	})
	c.state.notify(domain.NotifyIdentifierDetected, "PNR Detected", "Detected PNR from message: "+id.String())
	c.search.StartSearch(id)
}

func (c *WaitCoordinator) handleTimeout(session *waitSession) {
	if c.session != session {
		return
	}
	c.resolve(session, OutcomeTimeout)

	c.state.update(func(s *domain.Snapshot) { s.Waiting = false })
	c.state.notify(domain.NotifyWaitTimeout, "No Message Detected",
		fmt.Sprintf("No message with PNR received within %s.", c.timeout))
}

func (c *WaitCoordinator) resolve(session *waitSession, outcome WaitOutcome) {
	c.session = nil
	session.timer.Stop()
	session.unsubscribe()

	c.lastOutcome = outcome
	c.metrics.WaitActive(false)
	c.metrics.WaitResolved(string(outcome))
	c.logger.Info("wait resolved",
		zap.String("wait_id", session.id),
		zap.String("outcome", string(outcome)),
		zap.Duration("waited", c.clock.Now().Sub(session.startedAt)))
}
