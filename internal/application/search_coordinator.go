package application

import (
	"errors"
	"time"

	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/bnema/pnr-status-cli/internal/ports"
	"go.uber.org/zap"
)

const DefaultRefreshInterval = time.Second

const (
	resultFound    = "found"
	resultNotFound = "not_found"
	resultError    = "error"
)

// SearchCoordinator looks a PNR up once and then keeps re-querying it on a
// fixed interval. It owns the single refresh slot: starting a session always
// releases the previous one first, and the first failed refresh ends it.
//
// All methods must run on the dispatcher goroutine.
type SearchCoordinator struct {
	provider ports.LookupProvider
	clock    ports.Clock
	dispatch ports.Dispatcher
	interval time.Duration
	state    *stateStore
	metrics  ports.Metrics
	logger   *zap.Logger

	session *refreshSession
}

type refreshSession struct {
	id    domain.Identifier
	timer ports.Timer
}

func newSearchCoordinator(deps Dependencies, interval time.Duration, state *stateStore) *SearchCoordinator {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	return &SearchCoordinator{
		provider: deps.Provider,
		clock:    deps.Clock,
		dispatch: deps.Dispatcher,
		interval: interval,
		state:    state,
		metrics:  deps.Metrics,
		logger:   deps.Logger.Named("search"),
	}
}

func (c *SearchCoordinator) StartSearch(id domain.Identifier) {
	c.state.update(func(s *domain.Snapshot) { s.Loading = true })
	c.logger.Debug("searching", zap.String("pnr", id.String()))

	record, err := c.provider.Find(id)
	if err != nil {
		c.state.update(func(s *domain.Snapshot) {
			s.Loading = false
			s.Record = nil
		})

		if errors.Is(err, domain.ErrRecordNotFound) {
			c.metrics.SearchCompleted(resultNotFound)
			c.logger.Info("no record for pnr", zap.String("pnr", id.String()))
			c.state.notify(domain.NotifyRecordNotFound, "No Train Found", "Please check the PNR number and try again.")
			return
		}

		c.metrics.SearchCompleted(resultError)
		c.logger.Warn("lookup failed", zap.String("pnr", id.String()), zap.Error(err))
		c.state.notify(domain.NotifyLookupFailed, "Error", "Unable to fetch train details: "+err.Error())
		return
	}

	c.metrics.SearchCompleted(resultFound)
	c.release()

	session := &refreshSession{id: id}
	c.session = session
	c.arm(session)
	c.metrics.RefreshActive(true)

	c.state.update(func(s *domain.Snapshot) {
		s.Loading = false
		s.Record = &record
		s.Refreshing = true
	})
}

// StopSearch ends the active refresh session, if any.
func (c *SearchCoordinator) StopSearch() {
	if c.session == nil {
		return
	}

	c.logger.Debug("refresh stopped", zap.String("pnr", c.session.id.String()))
	c.release()
	c.state.update(func(s *domain.Snapshot) { s.Refreshing = false })
}

// Active reports the PNR currently being refreshed.
func (c *SearchCoordinator) Active() (domain.Identifier, bool) {
	if c.session == nil {
		return "", false
	}
	return c.session.id, true
}

func (c *SearchCoordinator) arm(session *refreshSession) {
	session.timer = c.clock.AfterFunc(c.interval, func() {
		c.dispatch.Post(func() { c.tick(session) })
	})
}

func (c *SearchCoordinator) tick(session *refreshSession) {
	if c.session != session {
		return
	}
	session.timer = nil

	record, err := c.provider.Find(session.id)
	if err != nil {
		c.metrics.RefreshTicked(resultError)
		c.logger.Warn("refresh failed, stopping", zap.String("pnr", session.id.String()), zap.Error(err))
		c.session = nil
		c.metrics.RefreshActive(false)
		c.state.update(func(s *domain.Snapshot) { s.Refreshing = false })
		return
	}

	c.metrics.RefreshTicked(resultFound)
	c.arm(session)
	c.state.update(func(s *domain.Snapshot) { s.Record = &record })
}

func (c *SearchCoordinator) release() {
	if c.session == nil {
		return
	}
	if c.session.timer != nil {
		c.session.timer.Stop()
	}
	c.session = nil
	c.metrics.RefreshActive(false)
}
