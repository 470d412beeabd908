package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	events, cancel := hub.Subscribe(nil)
	defer cancel()

	hub.Publish(Event{PassID: "pass-1", OwnerID: "owner-42", Origin: OriginApprover, Kind: KindDecided, Status: "approved"})

	select {
	case ev := <-events:
		assert.Equal(t, "pass-1", ev.PassID)
		assert.Equal(t, "owner-42", ev.OwnerID)
		assert.Equal(t, KindDecided, ev.Kind)
		assert.False(t, ev.At.IsZero(), "publish stamps the event time")
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestFilterExcludesForeignEvents(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	events, cancel := hub.Subscribe(func(ev Event) bool { return ev.OwnerID == "owner-42" })
	defer cancel()

	hub.Publish(Event{PassID: "pass-1", OwnerID: "owner-7", Kind: KindCreated})
	hub.Publish(Event{PassID: "pass-2", OwnerID: "owner-42", Kind: KindCreated})

	select {
	case ev := <-events:
		assert.Equal(t, "pass-2", ev.PassID, "only the matching event is delivered")
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Empty(t, events)
}

func TestPublishNeverBlocksOnFullBuffer(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	_, cancel := hub.Subscribe(nil)
	defer cancel()

	// Nobody drains the channel; publishing past the buffer must drop, not
	// hang.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(Event{PassID: "pass-1", OwnerID: "owner-42", Kind: KindExited})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	events, cancel := hub.Subscribe(nil)
	require.Equal(t, 1, hub.SubscriberCount())

	cancel()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-events
	assert.False(t, open, "channel is closed after cancel")

	// Second cancel is a no-op.
	cancel()
}

func TestStopClosesAllSubscribers(t *testing.T) {
	hub := NewHub()

	first, cancelFirst := hub.Subscribe(nil)
	second, _ := hub.Subscribe(nil)
	require.Equal(t, 2, hub.SubscriberCount())

	hub.Stop()
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-first
	assert.False(t, open)
	_, open = <-second
	assert.False(t, open)

	// Cancel after Stop must not panic.
	cancelFirst()
}
