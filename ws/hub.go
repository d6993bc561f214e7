// Package ws holds the websocket hub behind the live queue board: it keeps
// the connected clients and fans queue status changes out to all of them.
package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var HubInstance = NewHub(log.Logger)

func init() {
	go HubInstance.Run()
}

// Client is one connected queue board.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub tracks clients and broadcasts queue events to every one of them.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client

	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger,
	}
}

// QueueEvent is the message the board receives on every queue transition.
type QueueEvent struct {
	QueueID     int64  `json:"id_queue"`
	QueueNumber int    `json:"queue_number"`
	Status      string `json:"status"`
}

// BroadcastQueueEvent serialises the event and hands it to the hub. A
// marshal failure is logged and dropped; the HTTP request that triggered
// the event must not fail because the board missed an update.
func (h *Hub) BroadcastQueueEvent(ev QueueEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal queue event")
		return
	}
	h.Broadcast <- msg
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			h.logger.Debug().Int("clients", len(h.Clients)).Msg("ws client registered")
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				h.logger.Debug().Int("clients", len(h.Clients)).Msg("ws client unregistered")
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					// Slow client, drop it.
					close(client.Send)
					delete(h.Clients, client)
				}
			}
		}
	}
}
