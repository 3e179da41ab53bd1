package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bnema/pnr-status-cli/internal/adapters/messages/memory"
	"github.com/bnema/pnr-status-cli/internal/domain"
	"github.com/bnema/pnr-status-cli/internal/ports"
)

var errProviderDown = errors.New("provider down")

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward, firing due timers in order on the caller's
// goroutine. Timers armed by fired callbacks fire too when they fall due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()

		next.fn()
	}
}

func (c *fakeClock) nextDueLocked(target time.Time) *fakeTimer {
	pending := make([]*fakeTimer, 0, len(c.timers))
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired && !timer.at.After(target) {
			pending = append(pending, timer)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].at.Before(pending[j].at) })
	return pending[0]
}

// Armed counts timers that are scheduled and not yet fired or stopped.
func (c *fakeClock) Armed() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	armed := 0
	for _, timer := range c.timers {
		if !timer.stopped && !timer.fired {
			armed++
		}
	}
	return armed
}

type inlineDispatcher struct{}

func (inlineDispatcher) Post(fn func()) bool {
	fn()
	return true
}

// queueDispatcher holds posted work until Flush, which lets tests line up
// events that race for the same session.
type queueDispatcher struct {
	queue []func()
}

func (d *queueDispatcher) Post(fn func()) bool {
	d.queue = append(d.queue, fn)
	return true
}

func (d *queueDispatcher) Flush() {
	for len(d.queue) > 0 {
		fn := d.queue[0]
		d.queue = d.queue[1:]
		fn()
	}
}

type fakeProvider struct {
	mu      sync.Mutex
	records map[domain.Identifier]domain.Record
	err     error
	calls   []domain.Identifier
}

func newFakeProvider(records ...domain.Record) *fakeProvider {
	p := &fakeProvider{records: map[domain.Identifier]domain.Record{}}
	for _, record := range records {
		p.records[record.PNR] = record
	}
	return p
}

func (p *fakeProvider) Find(id domain.Identifier) (domain.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, id)
	if p.err != nil {
		return domain.Record{}, p.err
	}
	record, ok := p.records[id]
	if !ok {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	return record, nil
}

func (p *fakeProvider) Put(record domain.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[record.PNR] = record
}

func (p *fakeProvider) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *fakeProvider) Calls() []domain.Identifier {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Identifier(nil), p.calls...)
}

type recordingPresenter struct {
	mu            sync.Mutex
	snapshots     []domain.Snapshot
	notifications []domain.Notification
}

func (p *recordingPresenter) Present(snapshot domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
}

func (p *recordingPresenter) Notify(notification domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, notification)
}

func (p *recordingPresenter) Kinds() []domain.NotificationKind {
	p.mu.Lock()
	defer p.mu.Unlock()

	kinds := make([]domain.NotificationKind, 0, len(p.notifications))
	for _, n := range p.notifications {
		kinds = append(kinds, n.Kind)
	}
	return kinds
}

func (p *recordingPresenter) Last() domain.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.snapshots) == 0 {
		return domain.Snapshot{}
	}
	return p.snapshots[len(p.snapshots)-1]
}

type staticGate struct {
	granted bool
	err     error
}

func (g staticGate) Request(context.Context) (bool, error) {
	return g.granted, g.err
}

type failingSource struct{ err error }

func (s failingSource) Subscribe(func(string)) (func(), error) {
	return nil, s.err
}

type harness struct {
	clock     *fakeClock
	provider  *fakeProvider
	source    *memory.Source
	presenter *recordingPresenter
	tracker   *Tracker
}

var (
	sampleRecord = domain.Record{
		PNR:              "9876543210",
		TrainName:        "Rajdhani Express",
		CurrentLocation:  "Kanpur Central",
		EstimatedArrival: "18:45",
		SeatDetails:      "B2 34",
	}
	otherRecord = domain.Record{
		PNR:              "1234567890",
		TrainName:        "Shatabdi Express",
		CurrentLocation:  "Agra Cantt",
		EstimatedArrival: "12:10",
		SeatDetails:      "C1 12",
	}
)

func newHarness(dispatcher ports.Dispatcher) *harness {
	h := &harness{
		clock:     newFakeClock(),
		provider:  newFakeProvider(sampleRecord, otherRecord),
		source:    memory.New(),
		presenter: &recordingPresenter{},
	}

	seq := 0
	h.tracker = NewTracker(Dependencies{
		Provider:   h.provider,
		Source:     h.source,
		Gate:       staticGate{granted: true},
		Dispatcher: dispatcher,
		Presenter:  h.presenter,
		Clock:      h.clock,
		NewWaitID: func() (string, error) {
			seq++
			return "wait-test-" + string(rune('a'+seq-1)), nil
		},
	}, Options{})
	return h
}

func newStartedHarness(dispatcher ports.Dispatcher) *harness {
	h := newHarness(dispatcher)
	if err := h.tracker.Start(context.Background()); err != nil {
		panic(err)
	}
	return h
}
