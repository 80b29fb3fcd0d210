package api

import (
	"time"

	"cronplan/core"
)

// CheckRequest 校验请求
type CheckRequest struct {
	Expression string `json:"expression" binding:"required" example:"*/15 9-17 * * 1-5"`
	Strict     *bool  `json:"strict,omitempty"` // 默认 true，要求恰好 5 个字段
}

// CheckResponse 校验结果，valid=false 时 error 说明原因
type CheckResponse struct {
	Expression string          `json:"expression"`
	Strict     bool            `json:"strict"`
	Valid      bool            `json:"valid"`
	Fields     []FieldResponse `json:"fields,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// OccurrencesRequest 求值请求（POST body 或 GET query）
type OccurrencesRequest struct {
	Expression string `json:"expression" form:"expression" binding:"required" example:"0 12 * * *"`
	Count      int    `json:"count" form:"count" example:"5"` // 小于 1 时按 1 处理
}

// OccurrencesResponse 求值结果
type OccurrencesResponse struct {
	Expression  string   `json:"expression"`
	Requested   int      `json:"requested"`
	Returned    int      `json:"returned"`
	Occurrences []string `json:"occurrences" example:"2024-01-01 12:00"`
}

// FieldRequest 单字段展开请求，field 与 min/max 二选一
type FieldRequest struct {
	Text  string `json:"text" binding:"required" example:"1-10/3"`
	Field string `json:"field,omitempty" example:"hour" enums:"minute,hour,day-of-month,month,day-of-week"`
	Min   *int   `json:"min,omitempty"`
	Max   *int   `json:"max,omitempty"`
}

// FieldResponse 字段展开结果
type FieldResponse struct {
	Text   string `json:"text"`
	Field  string `json:"field,omitempty"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
	Values []int  `json:"values"`
}

// CompareRequest 语义对比请求
type CompareRequest struct {
	Expression string `json:"expression" binding:"required"`
	Count      int    `json:"count"`
}

// CompareResponse 与标准 cron 语义的对比
type CompareResponse struct {
	Expression        string   `json:"expression"`
	Occurrences       []string `json:"occurrences"`
	Conventional      []string `json:"conventional"`
	ConventionalValid bool     `json:"conventional_valid"`
	ConventionalError string   `json:"conventional_error,omitempty"`
	Agree             bool     `json:"agree"`
	FirstDivergence   int      `json:"first_divergence" example:"-1"`
}

// WeekdayResponse 星期编号与名称
type WeekdayResponse struct {
	Day  int    `json:"day" example:"0"`
	Name string `json:"name" example:"Sunday"`
}

// CatalogEntryResponse 目录条目
type CatalogEntryResponse struct {
	Name        string    `json:"name"`
	Expression  string    `json:"expression"`
	Count       int       `json:"count"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at" format:"date-time"`

	// 仅单条查询时计算
	Upcoming []string `json:"upcoming,omitempty"`
}

// ListCatalogResponse 目录列表
type ListCatalogResponse struct {
	Total int                    `json:"total"`
	Items []CatalogEntryResponse `json:"items"`
}

// TimelineItem 合并时间线上的触发点
type TimelineItem struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	At         string `json:"at" example:"2024-01-01 12:00"`
}

// TimelineResponse 合并时间线
type TimelineResponse struct {
	Heap  string         `json:"heap" enums:"binary,quad"`
	Total int            `json:"total"`
	Items []TimelineItem `json:"items"`
}

// StatsResponse 统计信息
type StatsResponse struct {
	CatalogEntries   int    `json:"catalog_entries" example:"3"`
	WebSocketClients int    `json:"websocket_clients" example:"1"`
	Subscribers      int    `json:"subscribers" example:"2"`
	DroppedEvents    uint64 `json:"dropped_events" example:"0"`

	// 系统信息
	Uptime string `json:"uptime" example:"24h30m"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"invalid request parameters"`
	Details string `json:"details,omitempty"`
}

func formatTimes(times []time.Time) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Format(core.OccurrenceLayout)
	}
	return out
}

func toCatalogEntryResponse(entry core.CatalogEntry) CatalogEntryResponse {
	return CatalogEntryResponse{
		Name:        entry.Name,
		Expression:  entry.Expression,
		Count:       entry.Count,
		Description: entry.Description,
		Tags:        entry.Tags,
		Source:      entry.Source,
		LoadedAt:    entry.LoadedAt,
	}
}

func toCompareResponse(cmp *core.Comparison) CompareResponse {
	return CompareResponse{
		Expression:        cmp.Expression,
		Occurrences:       formatTimes(cmp.Occurrences),
		Conventional:      formatTimes(cmp.Conventional),
		ConventionalValid: cmp.ConventionalValid,
		ConventionalError: cmp.ConventionalError,
		Agree:             cmp.Agree,
		FirstDivergence:   cmp.FirstDivergence,
	}
}

func toTimelineItems(entries []core.TimelineEntry) []TimelineItem {
	items := make([]TimelineItem, len(entries))
	for i, e := range entries {
		items[i] = TimelineItem{
			Name:       e.Name,
			Expression: e.Expression,
			At:         e.At.Format(core.OccurrenceLayout),
		}
	}
	return items
}
