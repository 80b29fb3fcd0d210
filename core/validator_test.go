package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		expr   string
		strict bool
		want   bool
	}{
		{"* * * * *", true, true},
		{"*/5 0-23/2 1,15 1-12 0-6", true, true},
		{"0 12 13 * 5", true, true},
		{"1-10/3,20 5/10 * * *", true, true},
		{"  0   12 *  * *  ", true, true},
		{"0\t12\t*\t*\t*", true, true},

		// 字段数量
		{"* * * *", true, false},
		{"* * * * * *", true, false},
		{"* * * *", false, true},
		{"0 12", false, true},
		{"", true, false},
		{"", false, false},
		{"   ", false, false},

		// 语法
		{"a * * * *", true, false},
		{"* * * * MON", true, false},
		{"1/2/3 * * * *", true, false},
		{"1- * * * *", true, false},
		{"-1 * * * *", true, false},
		{"1,,2 * * * *", true, false},
		{", * * * *", true, false},
		{"*/ * * * *", true, false},
		{"*-5 * * * *", true, false},
		{"? * * * *", true, false},
		{"L * * * *", true, false},
		{"a", false, false},

		// 只检查格式，不检查取值范围
		{"99 99 99 99 99", true, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Check(tt.expr, tt.strict), "Check(%q, %v)", tt.expr, tt.strict)
	}
}
