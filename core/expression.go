package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Expression 一次求值所需的上下文：原始字段文本及展开后的集合。
// 不在调用之间共享，可并发使用。
type Expression struct {
	raw [FieldCount]string

	Minutes  []int
	Hours    []int
	Days     []int
	Months   []int
	Weekdays []string
}

// Parse 校验（严格模式）并展开全部五个字段
func Parse(expression string) (*Expression, error) {
	if !Check(expression, true) {
		return nil, &FormatError{
			Input:  expression,
			Reason: "expected 5 fields of *, */n, a, a-b, a/n, a-b/n or comma lists",
		}
	}

	e := &Expression{}
	sets := make([][]int, FieldCount)
	for i, text := range strings.Fields(expression) {
		f := Field(i)
		b := f.Bounds()
		values, err := ParseField(text, b.Min, b.Max)
		if err != nil {
			return nil, fmt.Errorf("%s field: %w", f, err)
		}
		e.raw[i] = text
		sets[i] = values
	}

	e.Minutes = sets[FieldMinute]
	e.Hours = sets[FieldHour]
	e.Days = sets[FieldDayOfMonth]
	e.Months = sets[FieldMonth]
	e.Weekdays = make([]string, 0, len(sets[FieldDayOfWeek]))
	for _, day := range sets[FieldDayOfWeek] {
		name, _ := WeekdayName(day)
		e.Weekdays = append(e.Weekdays, name)
	}
	return e, nil
}

// Text 返回某个字段的原始文本
func (e *Expression) Text(f Field) string {
	if !f.valid() {
		return ""
	}
	return e.raw[f]
}

func (e *Expression) String() string {
	return strings.Join(e.raw[:], " ")
}

// MatchesDay 日期与星期的包含规则，三个分支取"或"：
// 日期字段非通配且命中；星期字段非通配且命中；两者均为通配。
func (e *Expression) MatchesDay(t time.Time) bool {
	domWildcard := e.raw[FieldDayOfMonth] == "*"
	dowWildcard := e.raw[FieldDayOfWeek] == "*"

	if !domWildcard && slices.Contains(e.Days, t.Day()) {
		return true
	}
	if !dowWildcard && slices.Contains(e.Weekdays, t.Weekday().String()) {
		return true
	}
	return domWildcard && dowWildcard
}
