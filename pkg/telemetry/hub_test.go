package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch, unsub := hub.Subscribe()
	defer unsub()

	hub.Publish(Event{Type: EventFocusChanged, From: "#a", To: "#b"})

	select {
	case got := <-ch:
		assert.Equal(t, EventFocusChanged, got.Type)
		assert.Equal(t, "#b", got.To)
		assert.False(t, got.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestHub_PresetTimestampKept(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	ch, unsub := hub.Subscribe()
	defer unsub()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	hub.Publish(Event{Type: EventTrapPushed, Timestamp: at})
	got := <-ch
	assert.Equal(t, at, got.Timestamp)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch1, unsub1 := hub.Subscribe()
	ch2, unsub2 := hub.Subscribe()
	defer unsub2()
	require.Equal(t, 2, hub.Subscribers())

	unsub1()
	unsub1()
	_, ok := <-ch1
	assert.False(t, ok, "channel closes on unsubscribe")
	assert.Equal(t, 1, hub.Subscribers())

	hub.Publish(Event{Type: EventDirectionFired})
	select {
	case <-ch2:
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber should still receive events")
	}
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	ch, unsub := hub.Subscribe()
	defer unsub()

	for range DefaultSubscriberBuffer + 10 {
		hub.Publish(Event{Type: EventDirectionFired})
	}
	assert.Len(t, ch, DefaultSubscriberBuffer)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe()

	hub.Close()
	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, unsub)
	assert.NotPanics(t, func() { hub.Publish(Event{Type: EventFocusChanged}) })

	late, _ := hub.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing after close yields a closed channel")
}

func TestHub_ConcurrentPublish(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	ch, unsub := hub.Subscribe()
	defer unsub()

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 8 {
				hub.Publish(Event{Type: EventDirectionFired, Data: map[string]any{"worker": i}})
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, ch, 32)
}
