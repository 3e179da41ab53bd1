// Package memory provides an in-process message source.
package memory

import (
	"sync"

	"github.com/bnema/pnr-status-cli/internal/ports"
)

type Source struct {
	mu      sync.Mutex
	handler func(string)
	gen     uint64
}

var _ ports.MessageSource = (*Source)(nil)

func New() *Source {
	return &Source{}
}

func (s *Source) Subscribe(handler func(text string)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler != nil {
		return nil, ports.ErrAlreadySubscribed
	}
	s.gen++
	gen := s.gen
	s.handler = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.gen == gen {
				s.handler = nil
			}
		})
	}, nil
}

// Deliver hands text to the current subscriber on the caller's goroutine and
// reports whether anyone was listening.
func (s *Source) Deliver(text string) bool {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		return false
	}
	handler(text)
	return true
}

func (s *Source) Subscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler != nil
}
