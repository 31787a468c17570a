package update

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleGeneration is reported when a ticket's chunk was unloaded or
	// replaced after the ticket was scheduled.
	ErrStaleGeneration = errors.New("stale chunk generation")
	// ErrChunkNotLoaded is reported when a position lies in a chunk that is not loaded.
	ErrChunkNotLoaded = errors.New("chunk not loaded")
	// ErrInvalidPosition is reported for positions outside the world's height range.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrUnknownKind is returned by handlerFor for kinds without a handler.
	ErrUnknownKind = errors.New("unknown update kind")
)

// UpdateError reports a ticket that could not be applied. The ticket is
// discarded and never retried.
type UpdateError struct {
	Ticket Ticket
	Err    error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update %s at %v: %v", e.Ticket.Kind, e.Ticket.Pos, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }
