package events

import "sync"

// Event is a notification published by the game core. Consumers (UI bridges,
// audio cues, metrics) subscribe without the core knowing about them.
type Event interface {
	EventType() string
}

const (
	EventTypeInventoryChanged = "inventory_changed"
	EventTypeHealthChanged    = "health_changed"
	EventTypePlayerDied       = "player_died"
	EventTypePresenceChanged  = "presence_changed"
)

// Publisher publishes events to all registered subscribers.
type Publisher interface {
	Publish(event Event)
}

// Subscriber receives published events.
type Subscriber func(event Event)

// Bus is an in-process publisher with synchronous fan-out. Publish is called
// from the serial game loop, so subscribers run between two gameplay
// mutations and must not block.
type Bus struct {
	lock        sync.RWMutex
	subscribers []Subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a subscriber for all events.
func (b *Bus) Subscribe(sub Subscriber) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.subscribers = append(b.subscribers, sub)
}

func (b *Bus) Publish(event Event) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	for _, sub := range b.subscribers {
		sub(event)
	}
}

// NopPublisher discards all events.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
