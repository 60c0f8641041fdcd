// Package websocket pushes live generation progress to subscribed clients.
package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/temirbekuulu/deckgen/internal/service/workflow"
)

// Message types pushed to clients
const (
	TypeConnected = "connected"
	TypeStep      = "step"
	TypeCompleted = "completed"
	TypeFailed    = "failed"
)

// Client represents a connected WebSocket client
type Client struct {
	conn         *websocket.Conn
	generationID uuid.UUID
	send         chan []byte
}

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients, keyed by generation run
type Hub struct {
	clients map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new websocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's message handling loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.clients[client.generationID]; !ok {
				h.clients[client.generationID] = make(map[*Client]bool)
			}
			h.clients[client.generationID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.generationID]; ok {
				delete(h.clients[client.generationID], client)
				close(client.send)

				if len(h.clients[client.generationID]) == 0 {
					delete(h.clients, client.generationID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client connection
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToGeneration sends a message to all clients watching a run
func (h *Hub) BroadcastToGeneration(generationID uuid.UUID, message Message) {
	messageJSON, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling WebSocket message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[generationID]
	if !ok {
		return
	}

	for client := range clients {
		select {
		case client.send <- messageJSON:
		default:
			// Client's send buffer is full, unregister
			go h.Unregister(client)
		}
	}
}

// BroadcastStep pushes one pipeline step result to watchers
func (h *Hub) BroadcastStep(generationID uuid.UUID, result workflow.StepResult) {
	h.BroadcastToGeneration(generationID, Message{
		Type: TypeStep,
		Data: result,
	})
}

// BroadcastCompleted announces a finished run
func (h *Hub) BroadcastCompleted(generationID uuid.UUID, deck *workflow.Deck) {
	h.BroadcastToGeneration(generationID, Message{
		Type: TypeCompleted,
		Data: map[string]interface{}{
			"generation_id": generationID.String(),
			"slides":        len(deck.Slides),
			"title":         deck.Title,
		},
	})
}

// BroadcastFailed announces a failed run
func (h *Hub) BroadcastFailed(generationID uuid.UUID, errorMessage string) {
	h.BroadcastToGeneration(generationID, Message{
		Type: TypeFailed,
		Data: map[string]interface{}{
			"generation_id": generationID.String(),
			"error":         errorMessage,
		},
	})
}

// HandleConnection handles an incoming WebSocket connection
func (h *Hub) HandleConnection(conn *websocket.Conn, generationID uuid.UUID) {
	client := &Client{
		conn:         conn,
		generationID: generationID,
		send:         make(chan []byte, 256),
	}

	h.Register(client)

	initialMsg := Message{
		Type: TypeConnected,
		Data: map[string]interface{}{
			"generation_id": generationID.String(),
		},
	}
	msgJSON, _ := json.Marshal(initialMsg)
	client.send <- msgJSON

	go client.writePump()
	go client.readPump(h)
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump drains the connection until the client goes away
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}
