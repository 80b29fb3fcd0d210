package core

import "fmt"

// HeapType 时间线合并使用的堆实现
type HeapType int

const (
	BinaryHeapType HeapType = iota
	QuadHeapType
)

func (t HeapType) String() string {
	switch t {
	case QuadHeapType:
		return "quad"
	default:
		return "binary"
	}
}

// ParseHeapType 解析 "binary" / "quad"，空字符串为 binary
func ParseHeapType(name string) (HeapType, error) {
	switch name {
	case "", "binary":
		return BinaryHeapType, nil
	case "quad":
		return QuadHeapType, nil
	}
	return 0, fmt.Errorf("unknown heap type %q", name)
}

// NewPriorityQueue 按类型创建堆，未知类型退回二叉堆
func NewPriorityQueue(t HeapType) PriorityQueue {
	switch t {
	case QuadHeapType:
		return NewQuadHeap()
	default:
		return NewBinaryHeap()
	}
}
