package workers

import (
	"context"
	"time"

	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/persistence"
)

// HeartbeatWorker pings the backend on an interval so it can tell live
// dedicated servers from dead ones. Only dedicated-server processes run it.
type HeartbeatWorker struct {
	client   *persistence.Client
	interval time.Duration
}

type NewHeartbeatWorkerOptions struct {
	Client   *persistence.Client
	Interval time.Duration
}

func NewHeartbeatWorker(opts NewHeartbeatWorkerOptions) *HeartbeatWorker {
	return &HeartbeatWorker{
		client:   opts.Client,
		interval: opts.Interval,
	}
}

func (w *HeartbeatWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.client.Heartbeat(ctx); err != nil {
				log.Error("Failed to send heartbeat: %v", err)
			}
		}
	}
}
