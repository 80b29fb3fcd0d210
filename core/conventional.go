package core

import (
	"time"

	"github.com/adhocore/gronx"
	"github.com/robfig/cron/v3"
)

// CronParser 标准 cron 语义的解析器包装（robfig/cron + gronx）
type CronParser struct {
	parser cron.Parser
	gron   *gronx.Gronx
}

func NewCronParser() CronParser {
	// 标准 5 字段，不含秒
	return CronParser{
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		gron:   gronx.New(),
	}
}

// Valid 按标准 cron 语法判断表达式是否合法
func (c *CronParser) Valid(expression string) bool {
	return c.gron.IsValid(expression)
}

// Next 按标准 cron 语义返回 from 之后的最多 n 个触发时间
func (c *CronParser) Next(expression string, from time.Time, n int) ([]time.Time, error) {
	schedule, err := c.parser.Parse(expression)
	if err != nil {
		return nil, err
	}

	var out []time.Time
	t := from
	for len(out) < n {
		t = schedule.Next(t)
		if t.IsZero() {
			// robfig 在五年内找不到匹配时返回零值
			break
		}
		out = append(out, t)
	}
	return out, nil
}

// Comparison 本系统语义与标准 cron 语义的对比结果
type Comparison struct {
	Expression        string      `json:"expression"`
	Occurrences       []time.Time `json:"occurrences"`
	Conventional      []time.Time `json:"conventional"`
	ConventionalValid bool        `json:"conventional_valid"`
	ConventionalError string      `json:"conventional_error,omitempty"`
	Agree             bool        `json:"agree"`
	FirstDivergence   int         `json:"first_divergence"`
}

// Compare 在同一时钟下分别计算两种语义的前 count 个触发时间。
// 差异通常来自 a-b/n 取倍数、x/n 忽略 x 以及日期/星期取"或"。
func (e *Enumerator) Compare(expression string, count int) (*Comparison, error) {
	count = normalizeCount(count)
	occurrences, err := e.Occurrences(expression, count)
	if err != nil {
		return nil, err
	}

	parser := NewCronParser()
	result := &Comparison{
		Expression:        expression,
		Occurrences:       occurrences,
		ConventionalValid: parser.Valid(expression),
		FirstDivergence:   -1,
	}

	conventional, err := parser.Next(expression, e.now(), count)
	if err != nil {
		result.ConventionalError = err.Error()
	}
	result.Conventional = conventional

	result.Agree = len(occurrences) == len(conventional)
	for i := 0; i < len(occurrences) || i < len(conventional); i++ {
		if i >= len(occurrences) || i >= len(conventional) || !occurrences[i].Equal(conventional[i]) {
			result.FirstDivergence = i
			result.Agree = false
			break
		}
	}
	return result, nil
}
