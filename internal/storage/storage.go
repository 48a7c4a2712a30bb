// Package storage persists player state. World content is regenerable
// by design and is never stored here.
package storage

import (
	"context"

	"github.com/kotobamud/engine/pkg/state"
)

// Storage persists player records as single JSON documents.
type Storage interface {
	// SavePlayer writes the full player record.
	SavePlayer(ctx context.Context, p *state.Player) error

	// LoadPlayer reads a player by id. Returns (nil, nil) when no
	// record exists; an error only for I/O failures.
	LoadPlayer(ctx context.Context, id string) (*state.Player, error)

	// LoadPlayerByName reads a player by display name, for session
	// resume. Returns (nil, nil) when no record exists.
	LoadPlayerByName(ctx context.Context, name string) (*state.Player, error)

	// Ping checks backend health.
	Ping(ctx context.Context) error

	Close() error
}
