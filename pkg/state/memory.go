package state

import (
	"sync"

	"github.com/joshgrift/piratesquest/pkg/game/types"
)

// InMemorySnapshotCache is the in-process SnapshotCache used by a single
// server process.
type InMemorySnapshotCache struct {
	lock      sync.RWMutex
	snapshots map[string]*types.PersistedStateSnapshot
}

func NewInMemorySnapshotCache() *InMemorySnapshotCache {
	return &InMemorySnapshotCache{
		snapshots: make(map[string]*types.PersistedStateSnapshot),
	}
}

func (c *InMemorySnapshotCache) Set(accountID string, snapshot *types.PersistedStateSnapshot) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.snapshots[accountID] = snapshot
}

func (c *InMemorySnapshotCache) Delete(accountID string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.snapshots, accountID)
}

func (c *InMemorySnapshotCache) GetAll() []CachedSnapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	cached := make([]CachedSnapshot, 0, len(c.snapshots))
	for accountID, snapshot := range c.snapshots {
		cached = append(cached, CachedSnapshot{
			AccountID: accountID,
			Snapshot:  snapshot,
		})
	}
	return cached
}
