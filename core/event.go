package core

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// EventType 事件类型
type EventType string

const (
	EventExpressionEvaluated EventType = "expression.evaluated" // 求值完成
	EventExpressionRejected  EventType = "expression.rejected"  // 格式或取值错误
	EventCatalogLoaded       EventType = "catalog.loaded"       // 定义文件加载成功
	EventCatalogRemoved      EventType = "catalog.removed"      // 定义文件被删除
	EventCatalogFailed       EventType = "catalog.failed"       // 定义文件无效
)

// AllEventTypes 全部已知事件类型
var AllEventTypes = []EventType{
	EventExpressionEvaluated,
	EventExpressionRejected,
	EventCatalogLoaded,
	EventCatalogRemoved,
	EventCatalogFailed,
}

// Event 求值或目录事件
type Event struct {
	Type        EventType              `json:"type"`
	Name        string                 `json:"name,omitempty"` // 目录条目名称
	Expression  string                 `json:"expression,omitempty"`
	Occurrences []string               `json:"occurrences,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type subscription struct {
	ch    chan Event
	types map[EventType]bool // 为空表示订阅全部
}

func (s *subscription) wants(t EventType) bool {
	return len(s.types) == 0 || s.types[t]
}

// EventBus 事件总线（支持多订阅者，发布不阻塞）
type EventBus struct {
	subscribers map[string]*subscription
	mu          sync.RWMutex
	bufferSize  int
	nextID      atomic.Uint64
	dropped     atomic.Uint64
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBus{
		subscribers: make(map[string]*subscription),
		bufferSize:  bufferSize,
	}
}

// Subscribe 订阅指定类型的事件，返回订阅ID和通道
func (eb *EventBus) Subscribe(eventTypes ...EventType) (string, <-chan Event) {
	sub := &subscription{
		ch:    make(chan Event, eb.bufferSize),
		types: make(map[EventType]bool, len(eventTypes)),
	}
	for _, et := range eventTypes {
		sub.types[et] = true
	}

	id := "sub-" + strconv.FormatUint(eb.nextID.Add(1), 10)

	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[id] = sub
	return id, sub.ch
}

// SubscribeAll 订阅所有事件
func (eb *EventBus) SubscribeAll() (string, <-chan Event) {
	return eb.Subscribe()
}

// Unsubscribe 取消订阅并关闭对应通道
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if sub, ok := eb.subscribers[id]; ok {
		delete(eb.subscribers, id)
		close(sub.ch)
	}
}

// Publish 发布事件（缓冲区满时丢弃，避免阻塞求值）
func (eb *EventBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, sub := range eb.subscribers {
		if !sub.wants(event.Type) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			eb.dropped.Add(1)
		}
	}
}

// Subscribers 当前订阅者数量
func (eb *EventBus) Subscribers() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Dropped 因缓冲区满而丢弃的事件数
func (eb *EventBus) Dropped() uint64 {
	return eb.dropped.Load()
}

// Close 关闭总线
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, sub := range eb.subscribers {
		close(sub.ch)
		delete(eb.subscribers, id)
	}
}
