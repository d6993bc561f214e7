package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	a := &Client{Send: make(chan []byte, 1)}
	b := &Client{Send: make(chan []byte, 1)}
	hub.Register <- a
	hub.Register <- b

	hub.BroadcastQueueEvent(QueueEvent{QueueID: 5, QueueNumber: 2, Status: "waiting"})

	for _, client := range []*Client{a, b} {
		select {
		case msg := <-client.Send:
			var ev QueueEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if ev.QueueID != 5 || ev.Status != "waiting" {
				t.Errorf("event = %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("client never received the broadcast")
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	slow := &Client{Send: make(chan []byte)}
	hub.Register <- slow

	// An unbuffered channel with no reader makes the broadcast select
	// fall through to the drop branch.
	hub.BroadcastQueueEvent(QueueEvent{QueueID: 1, QueueNumber: 1, Status: "waiting"})

	select {
	case _, ok := <-slow.Send:
		if ok {
			t.Fatalf("expected closed channel, got a message")
		}
	case <-time.After(time.Second):
		t.Fatalf("slow client was not dropped")
	}
}
