package core

import (
	"fmt"
	"sort"
	"time"
)

// TimelineEntry 合并后时间线上的一个触发点
type TimelineEntry struct {
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	At         time.Time `json:"at"`
}

// timelineCursor 单个表达式在合并过程中的读取位置
type timelineCursor struct {
	name        string
	expression  string
	occurrences []time.Time
	pos         int
	index       int
}

func (c *timelineCursor) Priority() int64 {
	return c.occurrences[c.pos].UnixNano()
}

// Less 同一时刻按名称排序，保证输出稳定
func (c *timelineCursor) Less(other QueueItem) bool {
	return c.name < other.(*timelineCursor).name
}

func (c *timelineCursor) SetIndex(i int) { c.index = i }
func (c *timelineCursor) Index() int     { return c.index }

// Timeline 将多个命名表达式的触发时间按时间顺序合并，返回最早的 count 个。
// 任一表达式无效时整体失败。
func (e *Enumerator) Timeline(expressions map[string]string, count int, heapType HeapType) ([]TimelineEntry, error) {
	count = normalizeCount(count)

	names := make([]string, 0, len(expressions))
	for name := range expressions {
		names = append(names, name)
	}
	sort.Strings(names)

	queue := NewPriorityQueue(heapType)
	for _, name := range names {
		parsed, err := Parse(expressions[name])
		if err != nil {
			return nil, fmt.Errorf("timeline entry %q: %w", name, err)
		}
		occurrences := e.Enumerate(parsed, count)
		if len(occurrences) == 0 {
			continue
		}
		// 旧式拼接顺序下单个表达式的结果可能不是升序
		sort.Slice(occurrences, func(i, j int) bool {
			return occurrences[i].Before(occurrences[j])
		})
		queue.Push(&timelineCursor{
			name:        name,
			expression:  parsed.String(),
			occurrences: occurrences,
		})
	}

	entries := make([]TimelineEntry, 0, count)
	for len(entries) < count && !queue.IsEmpty() {
		c := queue.Pop().(*timelineCursor)
		entries = append(entries, TimelineEntry{
			Name:       c.name,
			Expression: c.expression,
			At:         c.occurrences[c.pos],
		})
		c.pos++
		if c.pos < len(c.occurrences) {
			queue.Push(c)
		}
	}

	e.opts.Logger.Debug("merged timeline",
		"expressions", len(names),
		"heap", heapType.String(),
		"returned", len(entries),
	)
	return entries, nil
}
