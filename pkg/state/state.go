package state

import "github.com/joshgrift/piratesquest/pkg/game/types"

// CachedSnapshot is a last-known-good snapshot awaiting persistence.
type CachedSnapshot struct {
	AccountID string
	Snapshot  *types.PersistedStateSnapshot
}

// SnapshotCache holds the latest snapshot for every connected player. The
// game loop refreshes it; the save worker drains it on its own schedule.
type SnapshotCache interface {
	Set(accountID string, snapshot *types.PersistedStateSnapshot)
	Delete(accountID string)
	GetAll() []CachedSnapshot
}
