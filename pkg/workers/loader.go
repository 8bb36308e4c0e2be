package workers

import (
	"context"

	"github.com/joshgrift/piratesquest/pkg/game/types"
	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/persistence"
	"github.com/joshgrift/piratesquest/pkg/queue"
)

// LoadSnapshotRequest asks for a saved snapshot to be fetched for a freshly
// registered connection.
type LoadSnapshotRequest struct {
	ClientID  uint32
	AccountID string
	Username  string
}

// LoaderWorker fetches snapshots off the game loop and hands the result
// back as a connect event. A missing snapshot is a first-time player, not an
// error; a failed load spawns the player at defaults.
type LoaderWorker struct {
	client               *persistence.Client
	loadSnapshotChan     <-chan LoadSnapshotRequest
	connectionEventQueue queue.Queue
}

type NewLoaderWorkerOptions struct {
	Client               *persistence.Client
	LoadSnapshotChan     <-chan LoadSnapshotRequest
	ConnectionEventQueue queue.Queue
}

func NewLoaderWorker(opts NewLoaderWorkerOptions) *LoaderWorker {
	return &LoaderWorker{
		client:               opts.Client,
		loadSnapshotChan:     opts.LoadSnapshotChan,
		connectionEventQueue: opts.ConnectionEventQueue,
	}
}

func (w *LoaderWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case request := <-w.loadSnapshotChan:
			w.load(ctx, request)
		}
	}
}

func (w *LoaderWorker) load(ctx context.Context, request LoadSnapshotRequest) {
	snapshot, err := w.client.Load(ctx, request.AccountID)
	if err != nil {
		if persistence.IsNotFound(err) {
			log.Debug("No snapshot for account %s, spawning with defaults", request.AccountID)
		} else {
			log.Error("Failed to load snapshot for account %s: %v", request.AccountID, err)
		}
		snapshot = nil
	}

	if err := w.connectionEventQueue.Enqueue(&types.ConnectPlayerEvent{
		ClientID:  request.ClientID,
		AccountID: request.AccountID,
		Username:  request.Username,
		Snapshot:  snapshot,
	}); err != nil {
		log.Error("Failed to enqueue connect player event: %v", err)
	}
}
