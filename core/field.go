package core

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ParseField 将单个字段展开为升序、去重、位于 [min,max] 内的整数集合。
//
// 展开规则按顺序匹配：
//   - "*"：min 到 max 的全部整数
//   - "a,b,c"：逐项展开后合并，含 , - / 的子项递归处理
//   - "a-b/n"：[a,b] 中能被 n 整除的数（不是从 a 开始每隔 n 个）
//   - "x/n"：从 min 开始每隔 n 取值，x 被忽略
//   - "a-b"：a 到 b 的连续整数
//   - 其它：单个数值
func ParseField(text string, min, max int) ([]int, error) {
	values, err := expandField(text, min, max)
	if err != nil {
		return nil, err
	}

	// 越界判断
	for _, v := range values {
		if v < min || v > max {
			return nil, &DomainError{
				Text:   text,
				Reason: fmt.Sprintf("value %d out of range [%d,%d]", v, min, max),
			}
		}
	}
	if len(values) == 0 {
		return nil, &DomainError{Text: text, Reason: "field produces empty set"}
	}

	slices.Sort(values)
	return slices.Compact(values), nil
}

func expandField(text string, min, max int) ([]int, error) {
	switch {
	case text == "*":
		return sequence(min, max, 1), nil

	case strings.Contains(text, ","):
		var values []int
		for _, term := range strings.Split(text, ",") {
			if splittable(term) {
				sub, err := ParseField(term, min, max)
				if err != nil {
					return nil, err
				}
				values = append(values, sub...)
				continue
			}
			v, err := parseNumber(term, text)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil

	case strings.Contains(text, "/") && strings.Contains(text, "-"):
		rangeText, stepText, _ := strings.Cut(text, "/")
		step, err := parseStep(stepText, text)
		if err != nil {
			return nil, err
		}
		left, right, err := parseRange(rangeText, text, min, max)
		if err != nil {
			return nil, err
		}
		var values []int
		for k := left; k <= right; k++ {
			if abs(k)%step == 0 {
				values = append(values, k)
			}
		}
		return values, nil

	case strings.Contains(text, "/"):
		_, stepText, _ := strings.Cut(text, "/")
		step, err := parseStep(stepText, text)
		if err != nil {
			return nil, err
		}
		return sequence(min, max, step), nil

	case strings.Contains(text, "-"):
		left, right, err := parseRange(text, text, min, max)
		if err != nil {
			return nil, err
		}
		return sequence(left, right, 1), nil

	default:
		v, err := parseNumber(text, text)
		if err != nil {
			return nil, err
		}
		return []int{v}, nil
	}
}

// splittable 判断子项是否可再次切割
func splittable(term string) bool {
	return strings.ContainsAny(term, ",-/")
}

func parseNumber(s, field string) (int, error) {
	v, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return 0, &DomainError{Text: field, Reason: fmt.Sprintf("value %s out of range", s)}
	}
	if err != nil {
		return 0, &FormatError{Input: field, Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return v, nil
}

func parseStep(s, field string) (int, error) {
	step, err := parseNumber(s, field)
	if err != nil {
		return 0, err
	}
	if step <= 0 {
		return 0, &DomainError{Text: field, Reason: "step must be positive"}
	}
	return step, nil
}

// parseRange 解析 "a-b"，端点超出 [min,max] 时在展开之前报错
func parseRange(s, field string, min, max int) (int, int, error) {
	leftText, rightText, _ := strings.Cut(s, "-")
	left, err := parseNumber(leftText, field)
	if err != nil {
		return 0, 0, err
	}
	right, err := parseNumber(rightText, field)
	if err != nil {
		return 0, 0, err
	}
	if left < min || right > max {
		return 0, 0, &DomainError{
			Text:   field,
			Reason: fmt.Sprintf("range %d-%d out of range [%d,%d]", left, right, min, max),
		}
	}
	if left > right {
		return 0, 0, &DomainError{
			Text:   field,
			Reason: fmt.Sprintf("range start %d exceeds end %d", left, right),
		}
	}
	return left, right, nil
}

func sequence(from, to, step int) []int {
	if from > to {
		return nil
	}
	values := make([]int, 0, (to-from)/step+1)
	for v := from; v <= to; v += step {
		values = append(values, v)
	}
	return values
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
