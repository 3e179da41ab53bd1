package domain

import (
	"regexp"
	"strings"
)

// IdentifierLength is the number of digits in a PNR.
const IdentifierLength = 10

// Identifier is a validated ten-digit PNR.
type Identifier string

type RejectReason string

const (
	RejectEmpty  RejectReason = "empty"
	RejectFormat RejectReason = "format"
)

func (r RejectReason) Message() string {
	switch r {
	case RejectEmpty:
		return "PNR cannot be empty."
	case RejectFormat:
		return "PNR must be a valid 10-digit number."
	default:
		return string(r)
	}
}

var identifierPattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateIdentifier accepts exactly ten ASCII digits once surrounding
// whitespace is trimmed. Rejections are returned as *ValidationError.
func ValidateIdentifier(input string) (Identifier, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", &ValidationError{Reason: RejectEmpty}
	}
	if !identifierPattern.MatchString(trimmed) {
		return "", &ValidationError{Reason: RejectFormat}
	}

	return Identifier(trimmed), nil
}

func (id Identifier) String() string {
	return string(id)
}
