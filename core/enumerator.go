package core

import (
	"log/slog"
	"time"
)

// OccurrenceLayout 输出时间格式（分钟精度）
const OccurrenceLayout = "2006-01-02 15:04"

// MergeOrder 跨年结果的拼接顺序
type MergeOrder int

const (
	// MergeChronological 早的年份在前，整体保持升序
	MergeChronological MergeOrder = iota
	// MergeLegacy 后续年份的结果排在当前年份之前
	MergeLegacy
)

// EnumeratorOptions 求值器配置
type EnumeratorOptions struct {
	// 当前时间来源，默认 time.Now
	Now func() time.Time

	// 墙上时钟所在时区，默认 time.Local
	Location *time.Location

	// 当年之后最多再向后查找的年数，默认 DefaultLookaheadYears。
	// 只是安全上限：某个后续年份没有任何匹配时查找即结束。
	LookaheadYears int

	MergeOrder MergeOrder

	Logger *slog.Logger

	// 可选，发布求值事件
	EventBus *EventBus
}

// DefaultLookaheadYears 向后查找年数的默认上限
const DefaultLookaheadYears = 100

// Enumerator 根据表达式计算未来的触发时间。构造后无可变状态，可并发调用。
type Enumerator struct {
	opts EnumeratorOptions
}

// NewEnumerator 创建求值器，未设置的选项使用默认值
func NewEnumerator(opts EnumeratorOptions) *Enumerator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LookaheadYears <= 0 {
		opts.LookaheadYears = DefaultLookaheadYears
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Enumerator{opts: opts}
}

var defaultEnumerator = NewEnumerator(EnumeratorOptions{})

// FormatToDate 使用本地时钟计算最多 maxCount 个触发时间
func FormatToDate(expression string, maxCount int) ([]string, error) {
	return defaultEnumerator.FormatToDate(expression, maxCount)
}

// FormatToDate 返回 "YYYY-MM-DD HH:MM" 格式的触发时间
func (e *Enumerator) FormatToDate(expression string, maxCount int) ([]string, error) {
	occurrences, err := e.Occurrences(expression, maxCount)
	if err != nil {
		return nil, err
	}
	return formatOccurrences(occurrences), nil
}

// Occurrences 校验、解析表达式并返回最多 maxCount 个严格晚于当前分钟的触发时间。
// 超出向后查找年限时返回的数量可能少于 maxCount，这不是错误。
func (e *Enumerator) Occurrences(expression string, maxCount int) ([]time.Time, error) {
	parsed, err := Parse(expression)
	if err != nil {
		e.opts.Logger.Debug("rejected cron expression", "expression", expression, "error", err)
		e.publish(Event{
			Type:       EventExpressionRejected,
			Expression: expression,
			Error:      err.Error(),
		})
		return nil, err
	}

	occurrences := e.Enumerate(parsed, maxCount)
	e.publish(Event{
		Type:        EventExpressionEvaluated,
		Expression:  parsed.String(),
		Occurrences: formatOccurrences(occurrences),
		Metadata: map[string]interface{}{
			"requested": normalizeCount(maxCount),
			"returned":  len(occurrences),
		},
	})
	return occurrences, nil
}

// Enumerate 对已解析的表达式逐年查找，直到凑够 maxCount 个、
// 某个后续年份没有匹配，或超过 LookaheadYears 上限
func (e *Enumerator) Enumerate(expr *Expression, maxCount int) []time.Time {
	maxCount = normalizeCount(maxCount)
	now := e.now()
	startYear := now.Year()

	var chunks [][]time.Time
	total := 0
	for year := startYear; year <= startYear+e.opts.LookaheadYears; year++ {
		matches := e.scanYear(expr, year, now, maxCount-total)
		if year > startYear && len(matches) == 0 {
			// 向后查找的年份仍无结果，说明表达式本身无法满足
			break
		}
		chunks = append(chunks, matches)
		total += len(matches)
		if total >= maxCount {
			break
		}
	}

	e.opts.Logger.Debug("enumerated cron expression",
		"expression", expr.String(),
		"requested", maxCount,
		"returned", total,
		"years", len(chunks),
	)

	result := make([]time.Time, 0, total)
	if e.opts.MergeOrder == MergeLegacy {
		for i := len(chunks) - 1; i >= 0; i-- {
			result = append(result, chunks[i]...)
		}
		return result
	}
	for _, chunk := range chunks {
		result = append(result, chunk...)
	}
	return result
}

// scanYear 按 月/日/时/分 升序遍历一年，最多收集 limit 个结果
func (e *Enumerator) scanYear(expr *Expression, year int, now time.Time, limit int) []time.Time {
	loc := e.opts.Location
	var matches []time.Time

	for _, m := range expr.Months {
		month := time.Month(m)
		for day := 1; day <= daysIn(year, month); day++ {
			date := time.Date(year, month, day, 0, 0, 0, 0, loc)
			if dateBefore(date, now) || !expr.MatchesDay(date) {
				continue
			}
			for _, hour := range expr.Hours {
				for _, minute := range expr.Minutes {
					candidate := time.Date(year, month, day, hour, minute, 0, 0, loc)
					// 夏令时跳过的本地时间不存在
					if candidate.Day() != day || candidate.Hour() != hour || candidate.Minute() != minute {
						continue
					}
					if !candidate.After(now) {
						continue
					}
					if n := len(matches); n > 0 && !candidate.After(matches[n-1]) {
						continue
					}
					matches = append(matches, candidate)
					if len(matches) >= limit {
						return matches
					}
				}
			}
		}
	}
	return matches
}

// now 当前时间截断到分钟
func (e *Enumerator) now() time.Time {
	t := e.opts.Now().In(e.opts.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, e.opts.Location)
}

func (e *Enumerator) publish(event Event) {
	if e.opts.EventBus != nil {
		e.opts.EventBus.Publish(event)
	}
}

func normalizeCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dateBefore(date, now time.Time) bool {
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}

func formatOccurrences(occurrences []time.Time) []string {
	out := make([]string, len(occurrences))
	for i, t := range occurrences {
		out[i] = t.Format(OccurrenceLayout)
	}
	return out
}
