// Package events is the in-process notification bus used to tell the CLI
// and tests about session and configuration changes.
package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Topics.
const (
	TopicConfigUpdated      = "config.updated"
	TopicCredentialsChanged = "credentials.changed"
	TopicCredentialsCleared = "credentials.cleared"
	TopicTokenRefreshed     = "credentials.refreshed"

	// TopicAll subscribes to every topic.
	TopicAll = "*"
)

// Event represents a published message on the event bus.
type Event struct {
	Topic     string            `json:"topic"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   any               `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Handler processes an incoming event.
type Handler func(context.Context, Event)

// Publisher exposes the ability to publish events to the hub.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any, metadata map[string]string)
}

// Subscriber exposes subscription capabilities.
type Subscriber interface {
	Subscribe(topic string, handler Handler) func()
}

type subscription struct {
	id      uint64
	topic   string
	handler Handler
}

// Hub delivers events synchronously on the publishing goroutine, in
// subscription order. A panicking handler is logged and skipped.
type Hub struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
}

// NewHub constructs a new empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers handler for topic, or for everything with TopicAll.
// The returned func unsubscribes and is safe to call more than once.
func (h *Hub) Subscribe(topic string, handler Handler) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, topic: topic, handler: handler})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish dispatches an event to the subscribers of topic.
func (h *Hub) Publish(ctx context.Context, topic string, payload any, metadata map[string]string) {
	handlers := h.matching(topic)
	if len(handlers) == 0 {
		return
	}
	evt := Event{
		Topic:     topic,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
		Metadata:  metadata,
	}
	for _, handler := range handlers {
		deliver(ctx, handler, evt)
	}
}

func (h *Hub) matching(topic string) []Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Handler
	for _, s := range h.subs {
		if s.topic == topic || s.topic == TopicAll {
			out = append(out, s.handler)
		}
	}
	return out
}

func deliver(ctx context.Context, handler Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"topic": evt.Topic, "panic": r}).Error("event handler panicked")
		}
	}()
	handler(ctx, evt)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any, map[string]string) {}
