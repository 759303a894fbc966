package store

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomNotFound is returned by JoinRoom when no room has the given
	// code.
	ErrRoomNotFound = errors.New("room not found")

	// ErrNotInRoom is returned by operations that require an active
	// session.
	ErrNotInRoom = errors.New("not connected to a room")

	// ErrUnsupportedLanguage is returned when a language code is outside
	// the catalog.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// PersistenceError wraps any read/write failure against the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SubscriptionError wraps a realtime channel failure.
type SubscriptionError struct {
	Err error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription: %s", e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}
