package services

import (
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub is the connection registry: it binds authenticated identities to live
// websocket connections and routes their inbound frames. Room state lives in
// the RoomRegistry; durable mirroring goes through the SessionStore.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	registry *RoomRegistry
	store    SessionStore
}

// Client is one live transport session. Its room pointer is only touched
// from the read loop, so it needs no lock; everything written to the socket
// goes through the send channel and the single write loop.
type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	UserID   uint
	Username string

	sendMu     sync.Mutex
	sendClosed bool

	room *Room
}

func NewHub(registry *RoomRegistry, store SessionStore) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		registry: registry,
		store:    store,
	}
}

// ServeConnection registers an authenticated connection, acknowledges it
// with a connected envelope, and starts its read/write pumps.
func (h *Hub) ServeConnection(conn *websocket.Conn, identity *Identity) *Client {
	client := &Client{
		hub:      h,
		id:       uuid.NewString(),
		socket:   conn,
		send:     make(chan []byte, 256),
		UserID:   identity.UserID,
		Username: identity.Username,
	}

	h.register(client)
	log.Printf("User %s (%d) connected via WebSocket", client.Username, client.UserID)

	client.sendMessage(TypeConnected, map[string]any{
		"userId":   client.UserID,
		"username": client.Username,
		"message":  "Connected to game server",
	})

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

// unregister is idempotent; a disconnect racing a forced drop removes the
// entry once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	c.closeSend()
	log.Printf("Client %s unregistered (user %d: %s) - Total clients: %d", c.id, c.UserID, c.Username, total)
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// dispatch decodes one inbound frame and routes it. Decode failures are
// answered with a unicast error envelope and never close the connection.
func (h *Hub) dispatch(c *Client, data []byte) {
	_, payload, err := decodeInbound(data)
	if err != nil {
		var unknown *UnknownMessageError
		if errors.As(err, &unknown) {
			log.Printf("Unknown message type %q from user %d", unknown.Type, c.UserID)
			c.sendError("Unknown message type")
		} else {
			log.Printf("Error decoding message from user %d: %v", c.UserID, err)
			c.sendError("Invalid message format")
		}
		return
	}

	switch p := payload.(type) {
	case CreateGamePayload:
		h.handleCreateGame(c, p)
	case JoinGamePayload:
		h.handleJoinGame(c, p)
	case LeaveGamePayload:
		h.handleLeaveGame(c, p)
	case GameActionPayload:
		h.handleGameAction(c, p)
	case ChatMessagePayload:
		h.handleChatMessage(c, p)
	case ReadyStatePayload:
		h.handleReadyState(c, p)
	case EndGamePayload:
		h.handleEndGame(c, p)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.handleDisconnect(c)
		c.hub.unregister(c)
		c.socket.Close()
	}()

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for user %d: %v", c.UserID, err)
			}
			break
		}
		c.hub.dispatch(c, data)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}

	// send channel closed: say goodbye
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

// enqueue hands a frame to the write loop without blocking. A full buffer
// means the peer stopped draining; the connection is shut down and the
// failure is contained to this one client.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.sendClosed = true
		close(c.send)
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

func (c *Client) sendMessage(msgType string, payload any) {
	data, err := encodeMessage(msgType, payload)
	if err != nil {
		log.Printf("Error marshaling %s message for user %d: %v", msgType, c.UserID, err)
		return
	}
	if !c.enqueue(data) {
		log.Printf("Client %s (user %d) send buffer full, closing connection", c.id, c.UserID)
	}
}

func (c *Client) sendError(message string) {
	c.sendMessage(TypeError, map[string]any{"message": message})
}
