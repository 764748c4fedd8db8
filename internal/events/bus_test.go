package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publish(t *testing.T, bus *Bus, eventType, jobID string) {
	t.Helper()
	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent(eventType, jobID)}))
}

// receive drains n events from ch or fails after a second.
func receive(t *testing.T, ch <-chan Event, n int) []Event {
	t.Helper()
	got := make([]Event, 0, n)
	timeout := time.After(time.Second)
	for len(got) < n {
		select {
		case e := <-ch:
			got = append(got, e)
		case <-timeout:
			t.Fatalf("received %d of %d events", len(got), n)
		}
	}
	return got
}

func assertEmpty(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case e, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %s for %s", e.EventType(), e.JobID())
		}
	default:
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	all := bus.SubscribeAll(10)

	publish(t, bus, EventTransferStarted, "job-1")
	publish(t, bus, EventCleanupCompleted, "job-2")

	got := receive(t, all, 2)
	assert.Equal(t, EventTransferStarted, got[0].EventType())
	assert.Equal(t, EventCleanupCompleted, got[1].EventType())
}

func TestBus_FullSubscriberDropsEvent(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	slow := bus.SubscribeAll(1)
	fast := bus.SubscribeAll(10)

	publish(t, bus, EventTransferStarted, "job-1")
	publish(t, bus, EventTransferCompleted, "job-1")

	receive(t, fast, 2)
	got := receive(t, slow, 1)
	assert.Equal(t, EventTransferStarted, got[0].EventType())
	assertEmpty(t, slow)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.SubscribeAll(100)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.concurrent", fmt.Sprintf("job-%d", i))})
		}()
	}
	wg.Wait()

	jobs := make(map[string]bool)
	for _, e := range receive(t, ch, 10) {
		jobs[e.JobID()] = true
	}
	assert.Len(t, jobs, 10)
}

func TestBus_PersistsEvents(t *testing.T) {
	log := NewEventLog(setupTestDB(t))
	bus := NewBus(log, nil)
	defer bus.Close()

	require.NoError(t, bus.Publish(context.Background(), &TransferStarted{
		BaseEvent: NewBaseEvent(EventTransferStarted, "job-1"),
		Path:      "/w/Show.S01E02.mkv",
		Category:  "tv",
	}))

	raw, err := log.ForJob("job-1")
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, EventTransferStarted, raw[0].EventType)
	assert.Contains(t, raw[0].Payload, `"path":"/w/Show.S01E02.mkv"`)
}

func TestBus_Closed(t *testing.T) {
	bus := NewBus(nil, nil)
	before := bus.SubscribeAll(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	_, ok := <-before
	assert.False(t, ok)

	after := bus.SubscribeAll(1)
	_, ok = <-after
	assert.False(t, ok, "subscribing to a closed bus yields a closed channel")

	assert.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.event", "job-1")}))
}
