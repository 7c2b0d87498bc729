package core

import (
	"errors"
	"fmt"
)

var (
	// ErrPeerExists indicates a peer with the same ID is already registered.
	ErrPeerExists = errors.New("peer already exists")
	// ErrPeerNotFound indicates a requested peer is not registered.
	ErrPeerNotFound = errors.New("peer not found")
	// ErrTraceNotFound indicates the tracer was asked about an unknown message ID.
	ErrTraceNotFound = errors.New("message trace not found")
	// ErrNoPath indicates no route exists between two peers. Routing treats
	// this as an undelivered message, never as a run failure.
	ErrNoPath = errors.New("no path between peers")
)

// ConfigError describes an invalid simulation configuration. It is returned
// synchronously before any peer or topology construction happens; a run
// never produces a partial report alongside one.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid simulator config: %s: %s", e.Field, e.Reason)
}
