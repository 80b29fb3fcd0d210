package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronParser_Valid(t *testing.T) {
	parser := NewCronParser()

	valid := []string{"* * * * *", "0 12 * * *", "*/15 9-17 * * 1-5"}
	for _, expr := range valid {
		assert.True(t, parser.Valid(expr), expr)
	}

	invalid := []string{"a * * * *", "* * *"}
	for _, expr := range invalid {
		assert.False(t, parser.Valid(expr), expr)
	}
}

func TestCronParser_Reused(t *testing.T) {
	parser := NewCronParser()
	require.NotNil(t, parser.gron)

	// 同一个实例可反复校验
	for i := 0; i < 3; i++ {
		assert.True(t, parser.Valid("0 12 * * *"))
		assert.False(t, parser.Valid("0 12 * *"))
	}
}

func TestCronParser_Next(t *testing.T) {
	parser := NewCronParser()
	from := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		want []time.Time
	}{
		{
			name: "Every minute",
			expr: "* * * * *",
			want: []time.Time{
				time.Date(2024, 1, 1, 12, 31, 0, 0, time.UTC),
				time.Date(2024, 1, 1, 12, 32, 0, 0, time.UTC),
			},
		},
		{
			name: "Every hour at minute 0",
			expr: "0 * * * *",
			want: []time.Time{
				time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "Every Monday at 9:00 AM",
			expr: "0 9 * * 1",
			want: []time.Time{
				time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "Step counted from range start",
			expr: "1-10/5 13 * * *",
			want: []time.Time{
				time.Date(2024, 1, 1, 13, 1, 0, 0, time.UTC),
				time.Date(2024, 1, 1, 13, 6, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Next(tt.expr, from, len(tt.want))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCronParser_NextInvalid(t *testing.T) {
	parser := NewCronParser()

	_, err := parser.Next("not a cron", time.Now(), 1)
	assert.Error(t, err)
}

func TestCompare_Agree(t *testing.T) {
	e := fixedEnumerator(utc(2024, 1, 1, 0, 0))

	cmp, err := e.Compare("0 12 * * *", 3)
	require.NoError(t, err)

	assert.True(t, cmp.ConventionalValid)
	assert.Empty(t, cmp.ConventionalError)
	assert.True(t, cmp.Agree)
	assert.Equal(t, -1, cmp.FirstDivergence)
	assert.Equal(t, cmp.Occurrences, cmp.Conventional)
}

func TestCompare_Diverges(t *testing.T) {
	e := fixedEnumerator(utc(2024, 1, 1, 0, 0))

	tests := []struct {
		name       string
		expr       string
		divergence int
	}{
		// 区间步长取倍数：5,10 对 1,6
		{"range step", "1-10/5 * * * *", 0},
		// x/n 忽略 x：0,20,40 对 5,25,45
		{"prefixed step", "5/20 * * * *", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, err := e.Compare(tt.expr, 3)
			require.NoError(t, err)

			assert.Empty(t, cmp.ConventionalError)
			assert.False(t, cmp.Agree)
			assert.Equal(t, tt.divergence, cmp.FirstDivergence)
			assert.Len(t, cmp.Occurrences, 3)
			assert.Len(t, cmp.Conventional, 3)
		})
	}
}

func TestCompare_DayRuleMatchesConventional(t *testing.T) {
	// 两个字段都限定时，标准 cron 同样取"或"
	e := fixedEnumerator(utc(2024, 9, 1, 0, 0))

	cmp, err := e.Compare("0 12 13 * 5", 8)
	require.NoError(t, err)
	assert.True(t, cmp.Agree)
}

func TestCompare_InvalidExpression(t *testing.T) {
	e := fixedEnumerator(utc(2024, 1, 1, 0, 0))

	cmp, err := e.Compare("0 24 * * *", 3)
	assert.Nil(t, cmp)
	assert.ErrorIs(t, err, ErrOutOfDomain)
}
