package network

import (
	"context"
	"fmt"
	"net"

	"github.com/joshgrift/piratesquest/pkg/log"
	"github.com/joshgrift/piratesquest/pkg/messages"
	"github.com/joshgrift/piratesquest/pkg/queue"
)

// TCPServer accepts TCP connections and funnels their messages into the
// message queue.
type TCPServer struct {
	clientManager *ClientManager
	messageQueue  queue.Queue
	port          int
}

type NewTCPServerOptions struct {
	ClientManager *ClientManager
	MessageQueue  queue.Queue
	Port          int
}

func NewTCPServer(opts NewTCPServerOptions) *TCPServer {
	return &TCPServer{
		clientManager: opts.ClientManager,
		messageQueue:  opts.MessageQueue,
		port:          opts.Port,
	}
}

// Start starts the TCP server.
func (s *TCPServer) Start(ctx context.Context) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		log.Error("Failed to resolve TCP address: %v", err)
		return
	}

	tcpListener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		log.Error("Failed to listen on TCP address: %v", err)
		return
	}
	defer tcpListener.Close()

	log.Info("TCP server listening on %s", tcpAddr.String())

	go func() {
		<-ctx.Done()
		tcpListener.Close()
	}()

	for {
		conn, err := tcpListener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			log.Error("Failed to accept TCP connection: %v", err)
			continue
		}

		go s.handleTCPConnection(conn)
	}
}

// handleTCPConnection handles a TCP connection.
func (s *TCPServer) handleTCPConnection(conn net.Conn) {
	clientID, err := s.clientManager.ConnectTCPClient(conn)
	if err != nil {
		log.Error("Failed to add client: %v", err)
		conn.Close()
		return
	}
	log.Debug("New TCP connection %d from %s", clientID, conn.RemoteAddr().String())

	defer s.clientManager.DisconnectClient(clientID)

	for {
		message, err := ReadMessageFromTCP(conn)
		if err != nil {
			if _, ok := err.(*ErrConnectionClosed); ok {
				log.Debug("Connection closed for client %d", clientID)
				return
			}
			log.Error("Error reading TCP message from client %d: %v", clientID, err)
			return
		}

		// stamp the connection id; the client's claim is ignored
		message.ClientID = clientID

		if err := s.messageQueue.Enqueue(message); err != nil {
			log.Error("Failed to enqueue message: %v", err)
		}
	}
}

// WriteMessageToTCP writes a Message to a TCP connection
func WriteMessageToTCP(conn net.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	_, err = conn.Write(b)
	if err != nil {
		return fmt.Errorf("failed to write message to TCP connection: %v", err)
	}

	return nil
}

// ErrConnectionClosed is returned when the TCP connection is closed
type ErrConnectionClosed struct{}

func (e *ErrConnectionClosed) Error() string {
	return "connection closed"
}

// ReadMessageFromTCP reads a Message from a TCP connection
func ReadMessageFromTCP(conn net.Conn) (*messages.Message, error) {
	buf := make([]byte, messages.MessageBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		if err.Error() == "EOF" {
			return nil, &ErrConnectionClosed{}
		}
		return nil, fmt.Errorf("failed to read message from TCP connection: %v", err)
	}

	msg, err := messages.DeserializeMessage(buf[:n])
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
