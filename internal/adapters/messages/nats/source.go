// Package nats delivers inbound messages published on a NATS subject.
package nats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/pnr-status-cli/internal/ports"
	"github.com/nats-io/nats.go"
)

const (
	DefaultSubject      = "pnr.messages"
	DefaultFlushTimeout = 5 * time.Second
)

// Source subscribes to one subject; every payload is one message body.
type Source struct {
	conn    *nats.Conn
	subject string

	mu     sync.Mutex
	active *nats.Subscription
}

var _ ports.MessageSource = (*Source)(nil)

// Connect dials url with automatic reconnection. Extra options are appended
// to the defaults.
func Connect(url, subject string, opts ...nats.Option) (*Source, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	defaults := []nats.Option{
		nats.Name("pnr"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &Source{conn: nc, subject: subject}, nil
}

func (s *Source) Subscribe(handler func(text string)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return nil, ports.ErrAlreadySubscribed
	}

	sub, err := s.conn.Subscribe(s.subject, func(msg *nats.Msg) {
		handler(string(msg.Data))
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", s.subject, err)
	}
	// Flush so the interest is registered on the server before we report the
	// subscription as live.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("flushing subscription: %w", err)
	}
	s.active = sub

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = sub.Unsubscribe()

			s.mu.Lock()
			defer s.mu.Unlock()
			if s.active == sub {
				s.active = nil
			}
		})
	}, nil
}

func (s *Source) Close() error {
	s.conn.Close()
	return nil
}

// Publisher sends message bodies to the subject a Source listens on.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

func NewPublisher(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	nc, err := nats.Connect(url, nats.Name("pnr-send"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &Publisher{conn: nc, subject: subject}, nil
}

// Publish sends text and waits for the server to acknowledge it. A ctx without
// a deadline gets DefaultFlushTimeout.
func (p *Publisher) Publish(ctx context.Context, text string) error {
	if err := p.conn.Publish(p.subject, []byte(text)); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.subject, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFlushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.conn.Close()
	return nil
}
