package inventory

import (
	"errors"
	"fmt"
)

// Level names a tier of the inventory tree.
type Level string

const (
	LevelServer      Level = "server"
	LevelScope       Level = "scope"
	LevelClient      Level = "client"
	LevelReservation Level = "reservation"
)

// Title returns the level name with an upper-case first letter.
func (l Level) Title() string {
	switch l {
	case LevelServer:
		return "Server"
	case LevelScope:
		return "Scope"
	case LevelClient:
		return "Client"
	case LevelReservation:
		return "Reservation"
	default:
		return string(l)
	}
}

// NotFoundError reports the first level of a path that did not resolve and
// the key as the caller supplied it.
type NotFoundError struct {
	Level Level
	Key   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Level.Title(), e.Key)
}

func notFound(level Level, key string) *NotFoundError {
	return &NotFoundError{Level: level, Key: key}
}

// AsNotFound extracts a *NotFoundError from err's chain.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}
