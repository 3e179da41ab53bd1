// Package permission decides whether inbound messages may be read.
package permission

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/pnr-status-cli/internal/ports"
)

type Mode string

const (
	ModeGrant  Mode = "grant"
	ModeDeny   Mode = "deny"
	ModePrompt Mode = "prompt"
)

type Static bool

var _ ports.PermissionGate = Static(false)

func (s Static) Request(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(s), nil
}

// Prompt asks on out and reads a yes/no answer from in. Anything other than
// y or yes is a denial.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

var _ ports.PermissionGate = Prompt{}

func (p Prompt) Request(ctx context.Context) (bool, error) {
	if _, err := fmt.Fprint(p.Out, "Allow reading inbound messages to fetch PNR details? [y/N] "); err != nil {
		return false, fmt.Errorf("write permission prompt: %w", err)
	}

	answer := make(chan string, 1)
	failed := make(chan error, 1)
	go func() {
		line, err := readLine(p.In)
		if err != nil && line == "" {
			failed <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-failed:
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("read permission answer: %w", err)
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// readLine consumes In one byte at a time up to and including '\n', so input
// after the answer stays unread for whoever owns the terminal next. If ctx is
// cancelled first the read stays pending until the next byte or EOF.
func readLine(r io.Reader) (string, error) {
	var line strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return line.String(), nil
			}
			line.WriteByte(buf[0])
		}
		if err != nil {
			return line.String(), err
		}
	}
}

// New builds the gate for mode.
func New(mode Mode, in io.Reader, out io.Writer) (ports.PermissionGate, error) {
	switch mode {
	case ModeGrant, "":
		return Static(true), nil
	case ModeDeny:
		return Static(false), nil
	case ModePrompt:
		return Prompt{In: in, Out: out}, nil
	default:
		return nil, fmt.Errorf("unsupported permission mode %q", mode)
	}
}
