package notifyws

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/reachjvc/Daygame-coach-sub004/internal/models"
)

// Hub fans milestone award events out to every open connection of the award
// recipient. Traffic is one-way: clients never send anything meaningful.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	notify     chan *event
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type event struct {
	userID  string
	payload []byte
}

type milestoneEvent struct {
	Type       string             `json:"type"`
	Milestones []models.Milestone `json:"milestones"`
	Timestamp  string             `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		notify:     make(chan *event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case ev := <-h.notify:
			h.sendToUser(ev.userID, ev.payload)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyMilestones satisfies services.MilestoneNotifier. Delivery is
// best-effort: with no open connections, or a full backlog, the event is
// dropped and the UI picks the milestone up from the list endpoint.
func (h *Hub) NotifyMilestones(userID int64, milestones []models.Milestone) {
	payload, err := json.Marshal(milestoneEvent{
		Type:       "milestone_awarded",
		Milestones: milestones,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("notification hub encode event: %v", err)
		return
	}

	select {
	case h.notify <- &event{userID: strconv.FormatInt(userID, 10), payload: payload}:
	default:
		log.Printf("notification hub backlog full, dropping event for user %d", userID)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump drains the connection until it closes. Inbound payloads are
// ignored; reading is only needed to notice disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
