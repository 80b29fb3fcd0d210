package core

import "fmt"

// Field 字段位置
type Field int

const (
	FieldMinute Field = iota
	FieldHour
	FieldDayOfMonth
	FieldMonth
	FieldDayOfWeek
)

// FieldCount 一个表达式固定包含的字段数
const FieldCount = 5

// Bounds 字段的取值范围（闭区间）
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

var fieldBounds = [FieldCount]Bounds{
	FieldMinute:     {Min: 0, Max: 59},
	FieldHour:       {Min: 0, Max: 23},
	FieldDayOfMonth: {Min: 1, Max: 31},
	FieldMonth:      {Min: 1, Max: 12},
	FieldDayOfWeek:  {Min: 0, Max: 6},
}

var fieldNames = [FieldCount]string{
	FieldMinute:     "minute",
	FieldHour:       "hour",
	FieldDayOfMonth: "day-of-month",
	FieldMonth:      "month",
	FieldDayOfWeek:  "day-of-week",
}

func (f Field) valid() bool {
	return f >= 0 && int(f) < FieldCount
}

// Bounds 返回字段的取值范围
func (f Field) Bounds() Bounds {
	if !f.valid() {
		return Bounds{}
	}
	return fieldBounds[f]
}

func (f Field) String() string {
	if !f.valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseFieldName 根据名称查找字段，如 "hour"、"day-of-week"
func ParseFieldName(name string) (Field, error) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}
