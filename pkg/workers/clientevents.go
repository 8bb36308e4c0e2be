package workers

import (
	"github.com/joshgrift/piratesquest/pkg/game/types"
	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/network"
	"github.com/joshgrift/piratesquest/pkg/queue"
)

// ClientEventWorker converts connection-level events into game events for
// the game loop. A raw connect needs no game action until the handshake
// completes; a disconnect always does.
type ClientEventWorker struct {
	clientManager        *network.ClientManager
	connectionEventQueue queue.Queue
}

type NewClientEventWorkerOptions struct {
	ClientManager        *network.ClientManager
	ConnectionEventQueue queue.Queue
}

func NewClientEventWorker(opts NewClientEventWorkerOptions) *ClientEventWorker {
	return &ClientEventWorker{
		clientManager:        opts.ClientManager,
		connectionEventQueue: opts.ConnectionEventQueue,
	}
}

func (w *ClientEventWorker) Start() {
	for event := range w.clientManager.GetClientEventChan() {
		switch event.Type {
		case network.ClientEventTypeConnect:
			log.Debug("Client %d connected", event.ClientID)
		case network.ClientEventTypeDisconnect:
			if err := w.connectionEventQueue.Enqueue(&types.DisconnectPlayerEvent{
				ClientID: event.ClientID,
			}); err != nil {
				log.Error("Failed to enqueue disconnect player event: %v", err)
			}
		default:
			log.Error("Unknown client event type: %v", event.Type)
		}
	}
}
