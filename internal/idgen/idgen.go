// Package idgen provides short, URL-safe IDs for wait sessions, backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	WaitPrefix = "wait-"
	alphabet   = "abcdefghijklmnopqrstuvwxyz0123456789"
	length     = 8
)

func NewWaitID() (string, error) {
	id, err := nanoid.Generate(alphabet, length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return WaitPrefix + id, nil
}
