package entity

import "errors"

// Domain errors surfaced to clients as error events or JSON errors.
// Handlers convert these at the boundary; they never crash the event loop.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrNotParticipant    = errors.New("not a participant")
	ErrAlreadyAssigned   = errors.New("conversation already assigned")
	ErrAlreadyRated      = errors.New("conversation already rated")
	ErrInvalidTransition = errors.New("invalid status transition")
)
