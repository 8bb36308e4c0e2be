package workers

import (
	"context"
	"time"

	"github.com/joshgrift/piratesquest/pkg/game/types"
	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/persistence"
	"github.com/joshgrift/piratesquest/pkg/state"
)

// SaveSnapshotRequest asks for an immediate save, used on disconnect.
type SaveSnapshotRequest struct {
	AccountID string
	Snapshot  *types.PersistedStateSnapshot
}

// SaveWorker persists player snapshots. It handles immediate save requests
// from the game loop and, on its own interval, persists every cached
// snapshot. Failures are logged and superseded by the next cycle; gameplay
// never blocks on them.
type SaveWorker struct {
	client           *persistence.Client
	saveSnapshotChan <-chan SaveSnapshotRequest
	snapshotCache    state.SnapshotCache
	interval         time.Duration
}

type NewSaveWorkerOptions struct {
	Client           *persistence.Client
	SaveSnapshotChan <-chan SaveSnapshotRequest
	SnapshotCache    state.SnapshotCache
	Interval         time.Duration
}

func NewSaveWorker(opts NewSaveWorkerOptions) *SaveWorker {
	return &SaveWorker{
		client:           opts.Client,
		saveSnapshotChan: opts.SaveSnapshotChan,
		snapshotCache:    opts.SnapshotCache,
		interval:         opts.Interval,
	}
}

func (w *SaveWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case saveRequest := <-w.saveSnapshotChan:
			w.save(ctx, saveRequest.AccountID, saveRequest.Snapshot)
		case <-ticker.C:
			for _, cached := range w.snapshotCache.GetAll() {
				w.save(ctx, cached.AccountID, cached.Snapshot)
			}
		}
	}
}

func (w *SaveWorker) save(ctx context.Context, accountID string, snapshot *types.PersistedStateSnapshot) {
	if err := w.client.Save(ctx, accountID, snapshot); err != nil {
		log.Error("Failed to save snapshot for account %s: %v", accountID, err)
	}
}
