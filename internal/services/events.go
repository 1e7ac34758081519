package services

import (
	"sync"
)

// Event types broadcast to connected clients. Every committed mutation
// fires exactly one event, after the database write.
const (
	EventBugCreated     = "bugCreated"
	EventBugUpdated     = "bugUpdated"
	EventBugDeleted     = "bugDeleted"
	EventCommentAdded   = "commentAdded"
	EventCommentUpdated = "commentUpdated"
)

// Event is a real-time change notification pushed to clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// EventHub manages SSE client connections and event broadcasting
type EventHub struct {
	clients map[string]chan Event
	mu      sync.RWMutex
}

// NewEventHub creates a new event hub instance
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]chan Event),
	}
}

// Subscribe registers a new client and returns a channel for receiving events
func (h *EventHub) Subscribe(clientID string) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Create buffered channel to prevent blocking
	ch := make(chan Event, 100)
	h.clients[clientID] = ch
	return ch
}

// Unsubscribe removes a client from the hub
func (h *EventHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[clientID]; ok {
		close(ch)
		delete(h.clients, clientID)
	}
}

// Publish broadcasts an event to all connected clients
func (h *EventHub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		// Non-blocking send - drop event if client buffer is full
		select {
		case ch <- event:
		default:
			// Client is slow, skip this event
		}
	}
}

// ClientCount returns the number of connected clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Global event hub instance
var globalEventHub *EventHub
var eventHubOnce sync.Once

// GetEventHub returns the global event hub singleton
func GetEventHub() *EventHub {
	eventHubOnce.Do(func() {
		globalEventHub = NewEventHub()
	})
	return globalEventHub
}
