package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Feed events pushed to administrators.
const (
	EventRegistrationCreated = "registration.created"
	EventContactReceived     = "contact.received"
)

// Hub maintains the set of active clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The gorilla connection, nil for fiber connections.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	principalID string
	role        string
}

// Message is the envelope written to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.WithFields(log.Fields{"principal_id": client.principalID, "role": client.role}).Info("websocket client connected")

		case client := <-h.unregister:
			h.remove(client)
			log.WithField("principal_id", client.principalID).Info("websocket client disconnected")
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// BroadcastToRoles sends an event to every client whose role is listed.
func (h *Hub) BroadcastToRoles(event string, data interface{}, roles ...string) int {
	payload, err := json.Marshal(Message{Type: event, Data: data, At: time.Now()})
	if err != nil {
		log.WithError(err).Error("websocket: marshal message")
		return 0
	}
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	var stale []*Client
	sent := 0
	h.mutex.RLock()
	for client := range h.clients {
		if !allowed[client.role] {
			continue
		}
		select {
		case client.send <- payload:
			sent++
		default:
			stale = append(stale, client)
		}
	}
	h.mutex.RUnlock()

	for _, c := range stale {
		h.remove(c)
	}
	log.WithFields(log.Fields{"event": event, "sent": sent, "dropped": len(stale)}).Debug("websocket broadcast")
	return sent
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) newClient(conn *websocket.Conn, principalID, role string) *Client {
	return &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, 256),
		principalID: principalID,
		role:        role,
	}
}

// ServeWS upgrades a plain net/http request and attaches it to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, principalID, role string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	client := h.newClient(conn, principalID, role)
	h.register <- client
	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("websocket unexpected close")
			}
			return
		}
	}
}

// ServeFiberWS handles Fiber websocket connections. It blocks until the peer goes away.
func (h *Hub) ServeFiberWS(c *fiberws.Conn, principalID, role string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("ServeFiberWS panic for %s: %v", principalID, r)
		}
	}()

	client := h.newClient(nil, principalID, role)
	h.register <- client

	go h.fiberWritePump(client, c)
	// The fiber connection is only valid inside this handler, so read inline.
	h.fiberReadPump(client, c)
}

func (h *Hub) fiberWritePump(client *Client, c *fiberws.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("fiberWritePump panic for %s: %v", client.principalID, r)
		}
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.WriteMessage(fiberws.CloseMessage, []byte{})
				return
			}
			if err := c.WriteMessage(fiberws.TextMessage, message); err != nil {
				log.WithError(err).WithField("principal_id", client.principalID).Warn("websocket write failed")
				return
			}

		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(fiberws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) fiberReadPump(client *Client, c *fiberws.Conn) {
	defer func() {
		h.unregister <- client
	}()

	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if fiberws.IsUnexpectedCloseError(err, fiberws.CloseGoingAway, fiberws.CloseAbnormalClosure) {
				log.WithError(err).WithField("principal_id", client.principalID).Warn("websocket unexpected close")
			}
			return
		}
	}
}
