// Package plain prints tracker output as plain lines for pipes and logs.
package plain

import (
	"fmt"
	"io"
	"sync"

	"github.com/bnema/pnr-status-cli/internal/domain"
)

// Presenter writes a line for every visible transition. Unchanged refreshes
// print nothing.
type Presenter struct {
	mu   sync.Mutex
	out  io.Writer
	last domain.Snapshot
}

func NewPresenter(out io.Writer) *Presenter {
	return &Presenter{out: out}
}

func (p *Presenter) Present(next domain.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.last
	p.last = next

	if next.Loading && !prev.Loading {
		p.printf("searching %s\n", next.Identifier)
	}
	if next.Waiting && !prev.Waiting {
		p.printf("waiting for a message with a PNR\n")
	}
	if !next.Waiting && prev.Waiting {
		p.printf("stopped waiting\n")
	}
	if next.LastMessage != nil && (prev.LastMessage == nil || *prev.LastMessage != *next.LastMessage) {
		p.printf("message: %q\n", *next.LastMessage)
	}
	if next.Record != nil && (prev.Record == nil || *prev.Record != *next.Record) {
		p.printRecord(*next.Record)
	}
	if prev.Refreshing && !next.Refreshing {
		p.printf("refresh stopped\n")
	}
}

func (p *Presenter) Notify(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printf("[%s] %s\n", n.Title, n.Message)
}

func (p *Presenter) printRecord(r domain.Record) {
	p.printf("%s  %s | at %s | eta %s | seat %s\n",
		r.PNR, r.TrainName, r.CurrentLocation, r.EstimatedArrival, r.SeatDetails)
}

func (p *Presenter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}
