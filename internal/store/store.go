// Package store persists the greeting collection. Every implementation
// reads and writes the whole collection at once: SaveAll replaces whatever
// was stored before, so concurrent writers resolve as last-writer-wins.
package store

import (
	"context"
	"fmt"

	"greeting-card-go/internal/model"
)

// Store loads and saves the full, ordered greeting collection
type Store interface {
	// LoadAll returns the collection in insertion order. A missing backing
	// resource reads as an empty collection; LoadAll never writes.
	LoadAll(ctx context.Context) ([]model.Greeting, error)
	// SaveAll overwrites the stored collection with greetings.
	SaveAll(ctx context.Context, greetings []model.Greeting) error
	// Ping reports whether the backing resource is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// Error reports a failed read or write against the backing resource
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
