package core

import (
	"regexp"
	"strings"
)

// 通配符（可带步长），或由 a、a-b、a/n、a-b/n 组成的逗号列表
var fieldPattern = regexp.MustCompile(`^(?:\*(?:/\d+)?|\d+(?:-\d+)?(?:/\d+)?(?:,\d+(?:-\d+)?(?:/\d+)?)*)$`)

// Check 检查表达式格式是否支持。strict 为 true 时要求恰好 5 个字段。
// 只做语法检查，不检查取值范围。
func Check(expression string, strict bool) bool {
	fields := strings.Fields(expression)
	if len(fields) == 0 {
		return false
	}
	if strict && len(fields) != FieldCount {
		return false
	}

	for _, field := range fields {
		if !fieldPattern.MatchString(field) {
			return false
		}
	}
	return true
}
