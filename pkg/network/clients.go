package network

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync"

	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/messages"
	"nhooyr.io/websocket"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// ClientEventChannelSize represents the size of the client event channel
	ClientEventChannelSize = 1024
)

// ClientConnectionType distinguishes the transports a client can use.
type ClientConnectionType int

const (
	ClientConnectionTypeTCP ClientConnectionType = iota
	ClientConnectionTypeWebSocket
)

// Client represents a connected, possibly not yet registered, connection.
type Client struct {
	ID             uint32
	ConnectionType ClientConnectionType
	TCPConn        net.Conn
	WSConn         *websocket.Conn
}

// ClientEvent represents a connection-level event.
type ClientEvent struct {
	ClientID uint32
	Type     ClientEventType
}

type ClientEventType int

const (
	ClientEventTypeConnect ClientEventType = iota
	ClientEventTypeDisconnect
)

// ClientManager tracks raw connections and assigns connection ids. Session
// and identity state live in the game loop; this layer only moves bytes.
type ClientManager struct {
	clients         map[uint32]*Client
	clientsLock     sync.RWMutex
	clientEventChan chan ClientEvent
}

func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:         make(map[uint32]*Client),
		clientEventChan: make(chan ClientEvent, ClientEventChannelSize),
	}
}

// GetClientEventChan returns a one-way channel for receiving client events.
func (cm *ClientManager) GetClientEventChan() <-chan ClientEvent {
	return cm.clientEventChan
}

// ConnectTCPClient registers a TCP connection and returns its id.
func (cm *ClientManager) ConnectTCPClient(conn net.Conn) (uint32, error) {
	return cm.connect(&Client{
		ConnectionType: ClientConnectionTypeTCP,
		TCPConn:        conn,
	})
}

// ConnectWSClient registers a WebSocket connection and returns its id.
func (cm *ClientManager) ConnectWSClient(conn *websocket.Conn) (uint32, error) {
	return cm.connect(&Client{
		ConnectionType: ClientConnectionTypeWebSocket,
		WSConn:         conn,
	})
}

func (cm *ClientManager) connect(client *Client) (uint32, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	client.ID = clientID
	cm.clients[clientID] = client

	cm.clientEventChan <- ClientEvent{
		ClientID: clientID,
		Type:     ClientEventTypeConnect,
	}

	return clientID, nil
}

// DisconnectClient removes a client and closes its connection.
func (cm *ClientManager) DisconnectClient(clientID uint32) {
	cm.clientsLock.Lock()
	client, ok := cm.clients[clientID]
	if ok {
		delete(cm.clients, clientID)
	}
	cm.clientsLock.Unlock()

	if !ok {
		return
	}

	switch client.ConnectionType {
	case ClientConnectionTypeTCP:
		client.TCPConn.Close()
	case ClientConnectionTypeWebSocket:
		client.WSConn.Close(websocket.StatusNormalClosure, "disconnected")
	}

	cm.clientEventChan <- ClientEvent{
		ClientID: clientID,
		Type:     ClientEventTypeDisconnect,
	}
}

// Exists reports whether a client id is connected.
func (cm *ClientManager) Exists(clientID uint32) bool {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	_, ok := cm.clients[clientID]
	return ok
}

// GetClient returns a client by id.
func (cm *ClientManager) GetClient(clientID uint32) (*Client, error) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	client, ok := cm.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("client %d is not connected", clientID)
	}
	return client, nil
}

// GetClients returns all connected clients.
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	return clients
}

// SendMessageToClient writes a message on the client's transport.
func (cm *ClientManager) SendMessageToClient(ctx context.Context, clientID uint32, msg *messages.Message) error {
	client, err := cm.GetClient(clientID)
	if err != nil {
		return err
	}

	switch client.ConnectionType {
	case ClientConnectionTypeTCP:
		if err := WriteMessageToTCP(client.TCPConn, msg); err != nil {
			return fmt.Errorf("failed to write message to TCP connection for client %d: %v", clientID, err)
		}
	case ClientConnectionTypeWebSocket:
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			return fmt.Errorf("failed to write message to WebSocket connection for client %d: %v", clientID, err)
		}
	default:
		return fmt.Errorf("unknown connection type for client %d: %v", clientID, client.ConnectionType)
	}

	return nil
}

// SendMessageToAll writes a message to every connected client.
func (cm *ClientManager) SendMessageToAll(ctx context.Context, msg *messages.Message) {
	for _, client := range cm.GetClients() {
		if err := cm.SendMessageToClient(ctx, client.ID, msg); err != nil {
			log.Error("Failed to send message to client %d: %v", client.ID, err)
		}
	}
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
