package domain

import "regexp"

var messageIdentifierPattern = regexp.MustCompile(`(?i)PNR[^0-9]*([0-9]{10})`)

// ExtractIdentifier finds the first "PNR ... <ten digits>" occurrence in a
// message body. Text after the first match is ignored.
func ExtractIdentifier(body string) (string, error) {
	match := messageIdentifierPattern.FindStringSubmatch(body)
	if match == nil {
		return "", ErrIdentifierNotInMessage
	}

	return match[1], nil
}
