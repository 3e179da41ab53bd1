package ports

import "errors"

var ErrAlreadySubscribed = errors.New("message source already has an active subscription")

// MessageSource delivers full inbound message bodies to a single subscriber.
// Handlers may be invoked from any goroutine. The returned unsubscribe func is
// safe to call more than once.
type MessageSource interface {
	Subscribe(handler func(text string)) (unsubscribe func(), err error)
}
