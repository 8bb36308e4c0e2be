package workers

import (
	"context"

	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/persistence"
)

// PresenceRequest notifies the backend that a username changed presence.
type PresenceRequest struct {
	Username string
	Online   bool
}

// PresenceWorker delivers presence notifications off the game loop. They
// are fire-and-forget: a failure is logged and dropped.
type PresenceWorker struct {
	client       *persistence.Client
	presenceChan <-chan PresenceRequest
}

type NewPresenceWorkerOptions struct {
	Client       *persistence.Client
	PresenceChan <-chan PresenceRequest
}

func NewPresenceWorker(opts NewPresenceWorkerOptions) *PresenceWorker {
	return &PresenceWorker{
		client:       opts.Client,
		presenceChan: opts.PresenceChan,
	}
}

func (w *PresenceWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case request := <-w.presenceChan:
			if err := w.client.NotifyPresence(ctx, request.Username, request.Online); err != nil {
				log.Error("Failed to notify presence for %s: %v", request.Username, err)
			}
		}
	}
}
