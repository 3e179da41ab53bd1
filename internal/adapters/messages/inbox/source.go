// Package inbox treats a directory as a mailbox: every *.txt file that appears
// in it is one inbound message.
package inbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/pnr-status-cli/internal/ports"
	"github.com/fsnotify/fsnotify"
)

const (
	messageExt     = ".txt"
	dirMode        = 0o700
	fileMode       = 0o600
	tempFilePrefix = ".msg-"
)

type Source struct {
	dir string

	mu     sync.Mutex
	active bool
}

var _ ports.MessageSource = (*Source)(nil)

func New(dir string) *Source {
	return &Source{dir: filepath.Clean(dir)}
}

// Subscribe starts watching the directory. Files already present are not
// replayed. The handler runs on the watcher goroutine and must not call the
// returned unsubscribe synchronously.
func (s *Source) Subscribe(handler func(text string)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil, ports.ErrAlreadySubscribed
	}

	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create inbox watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch inbox %s: %w", s.dir, err)
	}

	done := make(chan struct{})
	go s.watch(watcher, handler, done)
	s.active = true

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = watcher.Close()
			<-done

			s.mu.Lock()
			s.active = false
			s.mu.Unlock()
		})
	}, nil
}

func (s *Source) watch(watcher *fsnotify.Watcher, handler func(string), done chan<- struct{}) {
	defer close(done)

	delivered := map[string]struct{}{}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isMessageFile(event.Name) {
				continue
			}
			if _, seen := delivered[event.Name]; seen {
				continue
			}

			data, err := os.ReadFile(event.Name)
			if err != nil || len(data) == 0 {
				continue
			}
			delivered[event.Name] = struct{}{}
			handler(string(data))
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func isMessageFile(path string) bool {
	base := filepath.Base(path)
	return filepath.Ext(base) == messageExt && !strings.HasPrefix(base, tempFilePrefix)
}

// Drop writes text into dir as a new message file. The file is renamed into
// place so watchers never observe a partial body.
func Drop(dir, text string) (string, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("create inbox directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePrefix+"*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp message file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.WriteString(text); err != nil {
		_ = tempFile.Close()
		return "", fmt.Errorf("write temp message file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return "", fmt.Errorf("chmod temp message file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("close temp message file: %w", err)
	}

	target := filepath.Join(dir, fmt.Sprintf("%d%s", time.Now().UnixNano(), messageExt))
	if err := os.Rename(tempName, target); err != nil {
		return "", fmt.Errorf("move message into inbox: %w", err)
	}
	cleanup = false

	return target, nil
}
