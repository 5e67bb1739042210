package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HandlerFunc handles a published event. Handlers run synchronously on the
// publisher's goroutine and must not block.
type HandlerFunc func(event *Event)

// Subscription identifies a registered handler so it can be removed again.
type Subscription uint64

// Bus is an in-process publish/subscribe dispatcher keyed by event type.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[Subscription]HandlerFunc
	nextSub  Subscription
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType]map[Subscription]HandlerFunc),
		log:      log.With().Str("service", "events").Logger(),
	}
}

// Subscribe registers a handler for the given event type and returns a
// subscription token for Unsubscribe. Long-lived subscribers may discard it.
func (b *Bus) Subscribe(eventType EventType, handler HandlerFunc) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSub++
	sub := b.nextSub
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[Subscription]HandlerFunc)
	}
	b.handlers[eventType][sub] = handler
	return sub
}

// Unsubscribe removes a previously registered handler. Transient subscribers
// like SSE clients must call this on disconnect or their handlers leak.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers[eventType], sub)
}

// Emit publishes an event with untyped payload data
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	b.mu.RLock()
	handlers := make([]HandlerFunc, 0, len(b.handlers[eventType]))
	for _, h := range b.handlers[eventType] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}

	eventJSON, _ := json.Marshal(event)
	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")
}

// EmitTyped publishes an event with typed payload data
func (b *Bus) EmitTyped(eventType EventType, module string, data EventData) {
	b.Emit(eventType, module, convertEventDataToMap(data))
}

// EmitError publishes an error event
func (b *Bus) EmitError(module string, err error, context map[string]interface{}) {
	b.EmitTyped(ErrorOccurred, module, &ErrorEventData{
		Error:   err.Error(),
		Context: context,
	})
}

// convertEventDataToMap converts typed EventData to map[string]interface{}
// so that subscribers see a uniform payload shape
func convertEventDataToMap(data EventData) map[string]interface{} {
	if data == nil {
		return nil
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil
	}

	var result map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil
	}

	return result
}
