package types

import "github.com/joshgrift/piratesquest/pkg/events"

// InventoryChangedEvent fires after a successful inventory mutation.
type InventoryChangedEvent struct {
	ClientID uint32
	Kind     ItemKind
	NewCount int
	Delta    int
}

func (e *InventoryChangedEvent) EventType() string { return events.EventTypeInventoryChanged }

// HealthChangedEvent fires when a player's health changes without dying.
type HealthChangedEvent struct {
	ClientID  uint32
	Health    int
	MaxHealth int
}

func (e *HealthChangedEvent) EventType() string { return events.EventTypeHealthChanged }

// DropPayload describes the lootable pickup spawned where a player died.
type DropPayload struct {
	ClientID uint32
	Nickname string
	Position Position
	Items    map[ItemKind]int
}

// PlayerDiedEvent carries the drop payload to the pickup spawner.
type PlayerDiedEvent struct {
	Drop DropPayload
}

func (e *PlayerDiedEvent) EventType() string { return events.EventTypePlayerDied }

// PresenceChangedEvent fires when a username goes online or offline.
type PresenceChangedEvent struct {
	Username string
	Online   bool
}

func (e *PresenceChangedEvent) EventType() string { return events.EventTypePresenceChanged }
