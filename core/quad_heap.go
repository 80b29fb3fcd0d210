package core

// QuadHeap 四叉堆，层数更少，适合同时合并大量表达式
type QuadHeap struct {
	items []QueueItem
}

func NewQuadHeap() *QuadHeap {
	return &QuadHeap{
		items: make([]QueueItem, 0),
	}
}

func (h *QuadHeap) Push(item QueueItem) {
	item.SetIndex(h.Len())
	h.items = append(h.items, item)
	h.up(h.Len() - 1)
}

func (h *QuadHeap) Pop() QueueItem {
	if h.IsEmpty() {
		return nil
	}
	n := h.Len() - 1
	h.swap(0, n)
	h.down(0, n)
	return h.popBack()
}

func (h *QuadHeap) Peek() QueueItem {
	if h.IsEmpty() {
		return nil
	}
	return h.items[0]
}

func (h *QuadHeap) Len() int {
	return len(h.items)
}

func (h *QuadHeap) IsEmpty() bool {
	return h.Len() == 0
}

func (h *QuadHeap) less(i, j int) bool {
	return before(h.items[i], h.items[j])
}

func (h *QuadHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].SetIndex(i)
	h.items[j].SetIndex(j)
}

func (h *QuadHeap) up(j int) {
	for j > 0 {
		i := (j - 1) / 4
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *QuadHeap) down(i, n int) {
	for {
		best := i
		firstChild := 4*i + 1
		for child := firstChild; child < firstChild+4 && child < n; child++ {
			if h.less(child, best) {
				best = child
			}
		}
		if best == i {
			return
		}
		h.swap(i, best)
		i = best
	}
}

func (h *QuadHeap) popBack() QueueItem {
	n := h.Len() - 1
	item := h.items[n]
	h.items[n] = nil
	h.items = h.items[:n]
	item.SetIndex(-1)
	return item
}
