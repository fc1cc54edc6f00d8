// Package websocket streams field-history entries to connected browsers,
// scoped per organization.
package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

type BroadcastMessage struct {
	OrgID   string
	Message []byte
}

type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan BroadcastMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.Mutex
}

type Client struct {
	orgID    string
	userID   string
	userRole string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

var hub = &Hub{
	clients:    make(map[string]map[*Client]bool),
	broadcast:  make(chan BroadcastMessage),
	register:   make(chan *Client),
	unregister: make(chan *Client),
}

func GetHub() *Hub {
	return hub
}

// Start launches the hub loop. Call once from main.
func Start() {
	go hub.Run()
}

func (h *Hub) Run() {
	log.Println("WebSocket hub started")
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if _, ok := h.clients[client.orgID]; !ok {
				h.clients[client.orgID] = make(map[*Client]bool)
			}
			h.clients[client.orgID][client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if clients, ok := h.clients[client.orgID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.orgID)
					}
				}
			}
			h.mutex.Unlock()

		case bm := <-h.broadcast:
			h.mutex.Lock()
			if clients, ok := h.clients[bm.OrgID]; ok {
				for client := range clients {
					select {
					case client.send <- bm.Message:
					default:
						close(client.send)
						delete(clients, client)
					}
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastFieldChange pushes a new history entry to every client of the
// entry's organization.
func BroadcastFieldChange(change *models.FieldChange) {
	data, err := json.Marshal(map[string]interface{}{
		"type":   "FIELD_CHANGE",
		"change": change,
	})
	if err != nil {
		log.Printf("Failed to marshal field change for WS: %v", err)
		return
	}
	hub.broadcast <- BroadcastMessage{OrgID: change.OrganizationID.Hex(), Message: data}
}
