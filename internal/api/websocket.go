package api

import (
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tablewise/printstudio/internal/kitchen"
)

// WebSocket message types
const (
	EventConnected = "kots_connected"
	EventPing      = "ping"
	EventPong      = "pong"
	EventBoard     = "kot_updated"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	conn   *websocket.Conn
	send   chan WSMessage
	server *Server
	mu     sync.Mutex
	closed bool
}

// handleWebSocket upgrades the connection and serves the board channel:
// the client gets a connected acknowledgment, ping/pong heartbeats, and a
// board event on every feed update.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn:   conn,
		send:   make(chan WSMessage, 256),
		server: s,
	}

	client.enqueue(WSMessage{Event: EventConnected})

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.mu.Lock()
		err := c.conn.WriteJSON(msg)
		c.mu.Unlock()

		if err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		c.server.removeClient(c)
		// Close the connection first so a write stuck on a dead peer
		// errors out and releases the mutex. Closing send then lets
		// writePump drain and exit; enqueue checks the closed flag so a
		// broadcast racing the disconnect is dropped instead of sent on
		// a closed channel.
		c.conn.Close()
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	}()

	c.server.addClient(c)

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		// Ping is the only inbound event with a defined response;
		// everything else is ignored rather than an error so older board
		// clients stay compatible.
		if msg.Event == EventPing {
			c.enqueue(WSMessage{Event: EventPong})
		}
	}
}

func (c *WSClient) enqueue(msg WSMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		// Client send buffer full, skip
	}
}

func (s *Server) addClient(client *WSClient) {
	s.clientsMu.Lock()
	s.clients[client] = true
	s.clientsMu.Unlock()
}

func (s *Server) removeClient(client *WSClient) {
	s.clientsMu.Lock()
	delete(s.clients, client)
	s.clientsMu.Unlock()
}

// BroadcastSnapshot pushes the latest board snapshot to every connected
// client. Wired as the feed's OnUpdate callback, so browsers see changes
// without polling.
func (s *Server) BroadcastSnapshot(tickets []kitchen.Ticket) {
	counts := kitchen.Summarize(tickets, time.Now())

	message := WSMessage{
		Event: EventBoard,
		Data: map[string]any{
			"tickets": tickets,
			"counts":  counts,
		},
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for client := range s.clients {
		client.enqueue(message)
	}
}
