package core

// BinaryHeap 二叉小顶堆，堆顶始终是最早的触发时间
type BinaryHeap struct {
	items []QueueItem
}

func NewBinaryHeap() *BinaryHeap {
	return &BinaryHeap{
		items: make([]QueueItem, 0),
	}
}

func (h *BinaryHeap) Push(item QueueItem) {
	item.SetIndex(h.Len())
	h.items = append(h.items, item)
	h.up(h.Len() - 1)
}

func (h *BinaryHeap) Pop() QueueItem {
	if h.IsEmpty() {
		return nil
	}
	n := h.Len() - 1
	h.swap(0, n)
	h.down(0, n)
	return h.popBack()
}

func (h *BinaryHeap) Peek() QueueItem {
	if h.IsEmpty() {
		return nil
	}
	return h.items[0]
}

func (h *BinaryHeap) Len() int {
	return len(h.items)
}

func (h *BinaryHeap) IsEmpty() bool {
	return h.Len() == 0
}

func (h *BinaryHeap) less(i, j int) bool {
	return before(h.items[i], h.items[j])
}

// 交换两个元素的位置同时更新它们的索引
func (h *BinaryHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].SetIndex(i)
	h.items[j].SetIndex(j)
}

func (h *BinaryHeap) up(j int) {
	for j > 0 {
		i := (j - 1) / 2
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *BinaryHeap) down(i, n int) {
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		j := left
		if right := left + 1; right < n && h.less(right, left) {
			j = right
		}
		if !h.less(j, i) {
			return
		}
		h.swap(i, j)
		i = j
	}
}

func (h *BinaryHeap) popBack() QueueItem {
	n := h.Len() - 1
	item := h.items[n]
	h.items[n] = nil
	h.items = h.items[:n]
	item.SetIndex(-1)
	return item
}
