package server

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket" // Gorilla WebSocket library for plain WebSockets
)

const (
	// WebSocket heartbeat settings to detect disconnected clients
	PING_INTERVAL = 10 * time.Second // Frequency of sending ping messages
	PONG_WAIT     = 60 * time.Second // Time to wait for a pong response before considering client disconnected
	WRITE_WAIT    = 10 * time.Second // Deadline for a single outgoing frame

	sendBufferSize = 256
)

// Client represents a single connected player.
type Client struct {
	conn *websocket.Conn // The raw WebSocket connection
	send chan []byte     // Channel for outgoing messages to this client
	id   string          // The ephemeral player ID assigned to this connection
	done chan struct{}   // Signal channel for goroutine termination

	roomMu sync.Mutex
	room   *Room // Room this client is seated in; nil while browsing the lobby
}

// NewClient creates and returns a new Client instance.
func NewClient(conn *websocket.Conn, id string) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		id:   id,
		done: make(chan struct{}),
	}
}

// ID returns the ephemeral player id assigned to this connection.
func (c *Client) ID() string { return c.id }

// Room returns the room this client is currently seated in, if any.
func (c *Client) Room() *Room {
	c.roomMu.Lock()
	defer c.roomMu.Unlock()
	return c.room
}

func (c *Client) setRoom(r *Room) {
	c.roomMu.Lock()
	c.room = r
	c.roomMu.Unlock()
}

// leaveRoom clears the client's room reference if it still points at r. A
// client switching rooms secures the new seat before the old room removes
// it, so the reference may already point elsewhere.
func (c *Client) leaveRoom(r *Room) {
	c.roomMu.Lock()
	if c.room == r {
		c.room = nil
	}
	c.roomMu.Unlock()
}

// TrySend queues a message for delivery. Delivery is best-effort: a nil
// payload or a full send buffer drops the message without error.
func (c *Client) TrySend(message []byte) {
	if message == nil {
		return
	}
	select {
	case c.send <- message:
	default:
		log.Printf("Client %s: WARNING send buffer full, dropping message.", c.id)
	}
}

// ReadPump continuously reads messages from the WebSocket connection.
// It handles disconnection detection and signals the WritePump to terminate.
func (c *Client) ReadPump(server *GameServer) {
	// Ensure connection is closed and client unregistered when this goroutine exits.
	defer func() {
		server.unregisterClient(c) // Routes the client through its room's leave path
		close(c.done)              // Signal the WritePump to terminate
		c.conn.Close()             // Close the underlying WebSocket connection
	}()

	// Set a read deadline and a pong handler for heartbeat.
	c.conn.SetReadDeadline(time.Now().Add(PONG_WAIT))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(PONG_WAIT)) // Extend deadline on pong
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client %s: Unexpected WebSocket close error: %v", c.id, err)
			}
			break // Exit loop on any read error, triggering defer
		}
		server.handleClientMessage(c, message)
	}
}

// WritePump continuously sends messages from the 'send' channel to the WebSocket connection.
// It also sends periodic pings for heartbeat and terminates gracefully on signal.
func (c *Client) WritePump() {
	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				// A send failure is local and recoverable; the ReadPump
				// notices the dead connection and unregisters the client.
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// Received termination signal from ReadPump.
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
