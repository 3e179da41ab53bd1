package domain

// Snapshot is the full presentation state emitted after every change.
type Snapshot struct {
	Input             string
	Identifier        Identifier
	Rejection         RejectReason
	Loading           bool
	Record            *Record
	Refreshing        bool
	LastMessage       *string
	Waiting           bool
	MessagesPermitted bool
}

type NotificationKind string

const (
	NotifyInvalidIdentifier   NotificationKind = "invalid_identifier"
	NotifyRecordNotFound      NotificationKind = "record_not_found"
	NotifyLookupFailed        NotificationKind = "lookup_failed"
	NotifyIdentifierDetected  NotificationKind = "identifier_detected"
	NotifyIdentifierMissing   NotificationKind = "identifier_missing"
	NotifyWaitTimeout         NotificationKind = "wait_timeout"
	NotifyPermissionDenied    NotificationKind = "permission_denied"
	NotifyMessagesUnavailable NotificationKind = "messages_unavailable"
)

// Notification is a one-shot message for the user; it is not part of the
// snapshot and is never replayed.
type Notification struct {
	Kind    NotificationKind
	Title   string
	Message string
}
