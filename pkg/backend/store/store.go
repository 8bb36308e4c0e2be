package store

import (
	"context"
	"encoding/json"
)

// ErrNotFound is returned when a requested record does not exist.
type ErrNotFound struct{}

func (e *ErrNotFound) Error() string {
	return "not found"
}

// Store persists player snapshots and presence for game servers. Snapshots
// are stored as opaque JSON keyed by server and account: the backend never
// interprets game state.
type Store interface {
	Close(ctx context.Context) error
	SavePlayer(ctx context.Context, serverID string, accountID string, snapshot json.RawMessage) error
	LoadPlayer(ctx context.Context, serverID string, accountID string) (json.RawMessage, error)
	SetPresence(ctx context.Context, serverID string, username string, online bool) error
	Heartbeat(ctx context.Context, serverID string) error
}
