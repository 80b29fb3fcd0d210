package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusSubscribeAndPublish(t *testing.T) {
	eb := NewEventBus(10)
	defer eb.Close()

	// 订阅特定事件
	subID, ch := eb.Subscribe(EventExpressionEvaluated, EventCatalogLoaded)
	assert.NotEmpty(t, subID)

	// 发布被订阅的事件
	eb.Publish(Event{Type: EventExpressionEvaluated, Expression: "0 12 * * *"})
	eb.Publish(Event{Type: EventExpressionRejected, Expression: "bad"}) // 未订阅
	eb.Publish(Event{Type: EventCatalogLoaded, Name: "backup"})

	// 验证收到的事件
	select {
	case ev := <-ch:
		assert.Equal(t, EventExpressionEvaluated, ev.Type)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case ev := <-ch:
		assert.Equal(t, EventCatalogLoaded, ev.Type)
		assert.Equal(t, "backup", ev.Name)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	// 验证未收到未订阅的事件
	select {
	case <-ch:
		t.Fatal("Should not receive unsubscribed event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	eb := NewEventBus(10)
	defer eb.Close()

	_, ch := eb.SubscribeAll()
	for _, et := range AllEventTypes {
		eb.Publish(Event{Type: et})
	}

	for _, et := range AllEventTypes {
		select {
		case ev := <-ch:
			assert.Equal(t, et, ev.Type)
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for %s", et)
		}
	}
}

func TestEventBusKeepsTimestamp(t *testing.T) {
	eb := NewEventBus(1)
	defer eb.Close()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, ch := eb.SubscribeAll()
	eb.Publish(Event{Type: EventCatalogRemoved, Timestamp: ts})

	ev := <-ch
	assert.Equal(t, ts, ev.Timestamp)
}

func TestEventBusBufferFull(t *testing.T) {
	eb := NewEventBus(1) // 很小的缓冲区
	defer eb.Close()

	_, ch := eb.Subscribe(EventExpressionEvaluated)

	// 发布不应阻塞，多余的事件被丢弃
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			eb.Publish(Event{Type: EventExpressionEvaluated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	assert.Len(t, ch, 1)
	assert.Equal(t, uint64(99), eb.Dropped())
}

func TestEventBusUnsubscribeClosesChannel(t *testing.T) {
	eb := NewEventBus(10)
	defer eb.Close()

	id, ch := eb.SubscribeAll()
	require.Equal(t, 1, eb.Subscribers())

	eb.Unsubscribe(id)
	assert.Equal(t, 0, eb.Subscribers())

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")

	// 重复取消订阅和之后的发布都是安全的
	eb.Unsubscribe(id)
	eb.Publish(Event{Type: EventCatalogLoaded})
}

func TestEventBusUniqueIDs(t *testing.T) {
	eb := NewEventBus(1)
	defer eb.Close()

	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, _ := eb.SubscribeAll()
		ids[id] = true
	}
	assert.Len(t, ids, 50)
}

func TestEventBusClose(t *testing.T) {
	eb := NewEventBus(10)
	_, ch1 := eb.SubscribeAll()
	_, ch2 := eb.Subscribe(EventCatalogFailed)

	eb.Close()

	_, ok1 := <-ch1
	_, ok2 := <-ch2
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.Equal(t, 0, eb.Subscribers())
}

func TestEventBusConcurrentPublish(t *testing.T) {
	eb := NewEventBus(1000)
	defer eb.Close()

	_, ch := eb.SubscribeAll()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				eb.Publish(Event{Type: EventExpressionEvaluated})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ch, 500)
	assert.Zero(t, eb.Dropped())
}
