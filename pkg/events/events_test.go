package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testEvent struct {
	name string
}

func (e *testEvent) EventType() string { return e.name }

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()
	var first, second []string

	bus.Subscribe(func(event Event) { first = append(first, event.EventType()) })
	bus.Subscribe(func(event Event) { second = append(second, event.EventType()) })

	bus.Publish(&testEvent{name: "a"})
	bus.Publish(&testEvent{name: "b"})

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "b"}, second)
}

func TestBus_NoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Publish(&testEvent{name: "a"})
	})
}

func TestNopPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		NopPublisher{}.Publish(&testEvent{name: "a"})
	})
}
