package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/summerquest/idiom-duel-go/internal/room"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

// WSMessage is the envelope of every WebSocket frame in both directions.
type WSMessage struct {
	Type     string `json:"type"`
	Data     any    `json:"data,omitempty"`
	Message  string `json:"message,omitempty"`
	PromptID string `json:"prompt_id,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Client is one WebSocket connection bound to a room. An empty key is a spectator.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	roomID string
	key    string
}

// Hub tracks connections per room and implements room.Notifier.
type Hub struct {
	rooms      *room.Manager
	logger     *zap.Logger
	clients    map[string]map[*Client]bool // room id -> clients
	broadcast  chan string
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	mu         sync.RWMutex
}

var errNoConnection = errors.New("player has no open connection")

func NewHub(rooms *room.Manager, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:      rooms,
		logger:     logger,
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan string, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.roomID] == nil {
				h.clients[client.roomID] = make(map[*Client]bool)
			}
			h.clients[client.roomID][client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("room_id", client.roomID))

		case client := <-h.unregister:
			h.drop(client)

		case roomID := <-h.broadcast:
			h.pushStates(roomID)

		case <-h.quit:
			h.mu.RLock()
			for _, set := range h.clients {
				for client := range set {
					client.conn.Close()
				}
			}
			h.mu.RUnlock()
			return
		}
	}
}

// Stop ends Run and closes every connection.
func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[client.roomID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.roomID)
	}
	close(client.send)
	h.logger.Debug("client unregistered", zap.String("room_id", client.roomID))
}

// StateChanged queues a fresh view for every connection of roomID. It never
// blocks the calling room.
func (h *Hub) StateChanged(roomID string) {
	select {
	case h.broadcast <- roomID:
	default:
		h.logger.Warn("broadcast queue full, dropping update", zap.String("room_id", roomID))
	}
}

// Prompt sends a judge question to the connection holding playerKey.
func (h *Hub) Prompt(roomID, playerKey string, p room.Prompt) error {
	msg, err := json.Marshal(WSMessage{Type: "prompt", Data: p})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := false
	for client := range h.clients[roomID] {
		if client.key != playerKey {
			continue
		}
		select {
		case client.send <- msg:
			sent = true
		default:
		}
	}
	if !sent {
		return errNoConnection
	}
	return nil
}

func (h *Hub) pushStates(roomID string) {
	rm, err := h.rooms.GetRoom(roomID)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[roomID] {
		msg, err := json.Marshal(WSMessage{Type: "game_state", Data: rm.View(client.key)})
		if err != nil {
			h.logger.Error("marshal game state", zap.Error(err))
			return
		}
		select {
		case client.send <- msg:
		default:
			h.logger.Warn("client send queue full", zap.String("room_id", roomID))
		}
	}
}

// sendMessage queues a message for this client only. It is called from the
// client's own read loop, which is the only path that closes the queue.
func (c *Client) sendMessage(msg WSMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (c *Client) readPump(h *Hub, rm *room.Room) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.quit:
		}
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendMessage(WSMessage{Type: "error", Message: "malformed message"})
			continue
		}
		h.handleMessage(c, rm, msg)
	}
}

func (h *Hub) handleMessage(c *Client, rm *room.Room, msg WSMessage) {
	switch msg.Type {
	case "refresh":
		c.sendMessage(WSMessage{Type: "game_state", Data: rm.View(c.key)})
	case "answer":
		if err := rm.Answer(c.key, msg.PromptID, msg.Text); err != nil {
			c.sendMessage(WSMessage{Type: "error", Message: err.Error()})
		}
	default:
		c.sendMessage(WSMessage{Type: "error", Message: "unknown message type " + msg.Type})
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-c.hub.quit:
			return
		}
	}
}
