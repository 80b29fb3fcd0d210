package core

// QueueItem 可入堆的元素，优先级小者先出；优先级相同时按 Less 比较
type QueueItem interface {
	Priority() int64
	Less(other QueueItem) bool
	SetIndex(int)
	Index() int
}

// PriorityQueue 最小堆
type PriorityQueue interface {
	Push(item QueueItem)
	Pop() QueueItem
	Peek() QueueItem
	Len() int
	IsEmpty() bool
}

// before 堆中的比较：先比优先级，再比 Less
func before(a, b QueueItem) bool {
	if a.Priority() != b.Priority() {
		return a.Priority() < b.Priority()
	}
	return a.Less(b)
}
