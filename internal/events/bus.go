package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Topics published on the bus.
const (
	TopicBarcodeScanned = "barcode_scanned"
	TopicStateChanged   = "state_changed"
	TopicCacheUpdated   = "barcode_cache_updated"
)

// Event is a bus message: a topic plus a flat string payload.
type Event struct {
	Topic string
	Data  map[string]string
}

// Handler consumes one published event.
type Handler func(Event)

// Subscription is the handle returned by Subscribe; Unsubscribe releases it.
type Subscription struct {
	id    uuid.UUID
	topic string
	bus   *Bus
}

// Unsubscribe removes the handler from the bus. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s.topic, s.id)
}

// Bus is a minimal in-process event bus. Dispatch is synchronous: Publish
// runs every handler on the caller's goroutine before returning.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[uuid.UUID]Handler
	logger zerolog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[string]map[uuid.UUID]Handler),
		logger: logger.With().Str("component", "bus").Logger(),
	}
}

// Subscribe registers a handler for a topic and returns its handle.
func (b *Bus) Subscribe(topic string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[uuid.UUID]Handler)
	}
	b.subs[topic][id] = h
	b.logger.Debug().Str("topic", topic).Str("subscription", id.String()).Msg("subscribed")
	return &Subscription{id: id, topic: topic, bus: b}
}

// Publish delivers the event to every subscriber of its topic.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[ev.Topic]))
	for _, h := range b.subs[ev.Topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

func (b *Bus) remove(topic string, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.subs[topic]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(b.subs, topic)
		}
	}
}
