package services

import (
	"errors"
	"fmt"
)

// Request-level errors are reported to the requesting client as an error
// envelope; the connection stays open.
var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrSessionFull     = errors.New("game is full")
	ErrAlreadyJoined   = errors.New("already in this game")
	ErrAlreadyInGame   = errors.New("already in another game")
	ErrNotInSession    = errors.New("player not in this game")
	ErrNotHost         = errors.New("only the host can do that")
	ErrNotInProgress   = errors.New("game is not in progress")
	ErrInvalidToken    = errors.New("invalid token")
)

// UnknownMessageError is returned by the decoder for envelopes whose type
// tag is not part of the protocol. The message is reported and otherwise
// ignored, so unknown kinds stay forward-compatible.
type UnknownMessageError struct {
	Type string
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("unknown message type: %s", e.Type)
}
