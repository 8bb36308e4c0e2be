package network

import (
	"context"

	"github.com/joshgrift/piratesquest/pkg/queue"
)

// NetworkManager owns the transports and the client manager. Every inbound
// message, regardless of transport, lands in one queue for the game loop.
type NetworkManager struct {
	ClientManager *ClientManager
	MessageQueue  queue.Queue
	TCPServer     *TCPServer
	WSServer      *WSServer
}

type NewNetworkManagerOptions struct {
	ClientManager *ClientManager
	MessageQueue  queue.Queue
	TCPPort       int
	WSPort        int
	WSServerTLS   *TLSConfig
}

func NewNetworkManager(opts NewNetworkManagerOptions) *NetworkManager {
	return &NetworkManager{
		ClientManager: opts.ClientManager,
		MessageQueue:  opts.MessageQueue,
		TCPServer: NewTCPServer(NewTCPServerOptions{
			ClientManager: opts.ClientManager,
			MessageQueue:  opts.MessageQueue,
			Port:          opts.TCPPort,
		}),
		WSServer: NewWSServer(NewWSServerOptions{
			ClientManager: opts.ClientManager,
			MessageQueue:  opts.MessageQueue,
			Port:          opts.WSPort,
			TLS:           opts.WSServerTLS,
		}),
	}
}

// Start starts all transports.
func (n *NetworkManager) Start(ctx context.Context) {
	go n.TCPServer.Start(ctx)
	go n.WSServer.Start(ctx)
}
