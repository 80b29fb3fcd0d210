package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	expr, err := Parse("*/15 9-17 1,15 * 1-5")
	require.NoError(t, err)

	assert.Equal(t, []int{0, 15, 30, 45}, expr.Minutes)
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16, 17}, expr.Hours)
	assert.Equal(t, []int{1, 15}, expr.Days)
	assert.Len(t, expr.Months, 12)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, expr.Weekdays)

	assert.Equal(t, "*/15", expr.Text(FieldMinute))
	assert.Equal(t, "1-5", expr.Text(FieldDayOfWeek))
	assert.Equal(t, "", expr.Text(Field(-1)))
	assert.Equal(t, "*/15 9-17 1,15 * 1-5", expr.String())
}

func TestParse_NormalizesWhitespace(t *testing.T) {
	expr, err := Parse("  0\t12  *   * *  ")
	require.NoError(t, err)
	assert.Equal(t, "0 12 * * *", expr.String())
}

func TestParse_FormatErrors(t *testing.T) {
	for _, input := range []string{"", "* * * *", "* * * * * *", "a * * * *", "1/2/3 * * * *"} {
		t.Run(input, func(t *testing.T) {
			expr, err := Parse(input)
			assert.Nil(t, expr)
			assert.ErrorIs(t, err, ErrInvalidFormat)

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, input, formatErr.Input)
		})
	}
}

func TestParse_DomainErrors(t *testing.T) {
	tests := []struct {
		input string
		field string
	}{
		{"60 * * * *", "minute field"},
		{"0 24 * * *", "hour field"},
		{"0 0 0 * *", "day-of-month field"},
		{"0 0 * 13 *", "month field"},
		{"0 0 * * 7", "day-of-week field"},
		{"10-5 * * * *", "minute field"},
		{"* * * * 1-3/5", "day-of-week field"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, ErrOutOfDomain)
			assert.NotErrorIs(t, err, ErrInvalidFormat)
			assert.Contains(t, err.Error(), tt.field)

			var domainErr *DomainError
			assert.ErrorAs(t, err, &domainErr)
		})
	}
}

func TestExpression_MatchesDay(t *testing.T) {
	// 2024-09-13 是星期五
	friday13 := time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC)
	friday6 := time.Date(2024, 9, 6, 0, 0, 0, 0, time.UTC)
	sunday13 := time.Date(2024, 10, 13, 0, 0, 0, 0, time.UTC)
	monday2 := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		expr string
		day  time.Time
		want bool
	}{
		// 两者均为通配
		{"0 0 * * *", monday2, true},

		// 只限定日期
		{"0 0 13 * *", friday13, true},
		{"0 0 13 * *", friday6, false},

		// 只限定星期
		{"0 0 * * 5", friday6, true},
		{"0 0 * * 5", monday2, false},

		// 两者都限定时取"或"
		{"0 0 13 * 5", friday13, true},
		{"0 0 13 * 5", friday6, true},
		{"0 0 13 * 5", sunday13, true},
		{"0 0 13 * 5", monday2, false},

		// 通配判断基于原始文本，*/1 不算通配
		{"0 0 */1 * 5", monday2, true},
	}

	for _, tt := range tests {
		expr, err := Parse(tt.expr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, expr.MatchesDay(tt.day), "%s on %s", tt.expr, tt.day.Format("2006-01-02 Mon"))
	}
}

func TestErrors(t *testing.T) {
	formatErr := &FormatError{Input: "x", Reason: "bad"}
	assert.Equal(t, `invalid cron expression "x": bad`, formatErr.Error())
	assert.Equal(t, `invalid cron expression "x"`, (&FormatError{Input: "x"}).Error())

	domainErr := &DomainError{Text: "99", Reason: "value 99 out of range [0,59]"}
	assert.Equal(t, `cron field "99": value 99 out of range [0,59]`, domainErr.Error())

	assert.ErrorIs(t, formatErr, ErrInvalidFormat)
	assert.NotErrorIs(t, formatErr, ErrOutOfDomain)
	assert.ErrorIs(t, domainErr, ErrOutOfDomain)
	assert.NotErrorIs(t, domainErr, ErrInvalidFormat)
}
