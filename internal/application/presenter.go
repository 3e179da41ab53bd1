package application

import "github.com/bnema/pnr-status-cli/internal/domain"

// Presenter receives every state change and every one-shot notification.
// Calls arrive on the dispatcher goroutine.
type Presenter interface {
	Present(snapshot domain.Snapshot)
	Notify(notification domain.Notification)
}

type NopPresenter struct{}

func (NopPresenter) Present(domain.Snapshot)     {}
func (NopPresenter) Notify(domain.Notification) {}

type stateStore struct {
	snapshot  domain.Snapshot
	presenter Presenter
}

func newStateStore(presenter Presenter) *stateStore {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	return &stateStore{presenter: presenter}
}

func (s *stateStore) current() domain.Snapshot {
	return s.snapshot
}

func (s *stateStore) update(fn func(*domain.Snapshot)) {
	fn(&s.snapshot)
	s.presenter.Present(s.snapshot)
}

func (s *stateStore) notify(kind domain.NotificationKind, title, message string) {
	s.presenter.Notify(domain.Notification{Kind: kind, Title: title, Message: message})
}
