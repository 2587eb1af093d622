package eventbus

import (
	"testing"

	"shelley-server/internal/protocol"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	bus := New(zap.NewNop())

	var got []string
	bus.Subscribe(func(protocol.Event) { got = append(got, "first") })
	bus.Subscribe(func(protocol.Event) { got = append(got, "second") })
	bus.Subscribe(func(protocol.Event) { got = append(got, "third") })

	bus.Publish(protocol.GameReadyEvent{})
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New(zap.NewNop())

	count := 0
	unsubscribe := bus.Subscribe(func(protocol.Event) { count++ })

	bus.Publish(protocol.GameReadyEvent{})
	unsubscribe()
	bus.Publish(protocol.GameReadyEvent{})

	assert.Equal(t, 1, count)
}

func TestUnsubscribeDuringPublishDoesNotSkipOthers(t *testing.T) {
	bus := New(zap.NewNop())

	var got []string
	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(protocol.Event) {
		got = append(got, "self-removing")
		unsubscribe()
	})
	bus.Subscribe(func(protocol.Event) { got = append(got, "survivor") })

	bus.Publish(protocol.GameReadyEvent{})
	assert.Equal(t, []string{"self-removing", "survivor"}, got)

	got = nil
	bus.Publish(protocol.GameReadyEvent{})
	assert.Equal(t, []string{"survivor"}, got)
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := New(zap.NewNop())

	delivered := false
	bus.Subscribe(func(protocol.Event) { panic("subscriber bug") })
	bus.Subscribe(func(ev protocol.Event) {
		delivered = true
		assert.Equal(t, "navigate", ev.EventType())
	})

	assert.NotPanics(t, func() {
		bus.Publish(protocol.NavigateEvent{Route: "/gallery"})
	})
	assert.True(t, delivered)
}
