package api

import (
	"errors"
	"strconv"
	"time"

	"cronplan/core"

	"github.com/gin-gonic/gin"
)

// 时间线默认返回条数
const defaultTimelineCount = 10

// CheckExpression 校验表达式格式，合法时附带各字段展开结果
func (s *Server) CheckExpression(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{
			Code:    400,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	strict := true
	if req.Strict != nil {
		strict = *req.Strict
	}

	resp := CheckResponse{
		Expression: req.Expression,
		Strict:     strict,
		Valid:      core.Check(req.Expression, strict),
	}

	// valid 只反映格式；取值越界（如 0 25 * * *）由 error 给出
	if parsed, err := core.Parse(req.Expression); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Fields = fieldsOf(parsed)
	}

	c.JSON(200, resp)
}

// ListOccurrences 计算未来的触发时间
func (s *Server) ListOccurrences(c *gin.Context) {
	var req OccurrencesRequest
	var err error
	if c.Request.Method == "GET" {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		c.JSON(400, ErrorResponse{
			Code:    400,
			Message: "invalid request",
			Details: err.Error(),
		})
		return
	}

	occurrences, err := s.evaluator.Occurrences(req.Expression, req.Count)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(200, OccurrencesResponse{
		Expression:  req.Expression,
		Requested:   max(req.Count, 1),
		Returned:    len(occurrences),
		Occurrences: formatTimes(occurrences),
	})
}

// ExpandField 展开单个字段
func (s *Server) ExpandField(c *gin.Context) {
	var req FieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{
			Code:    400,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp := FieldResponse{Text: req.Text}
	switch {
	case req.Field != "":
		f, err := core.ParseFieldName(req.Field)
		if err != nil {
			c.JSON(400, ErrorResponse{Code: 400, Message: "unknown field", Details: err.Error()})
			return
		}
		b := f.Bounds()
		resp.Field, resp.Min, resp.Max = f.String(), b.Min, b.Max
	case req.Min != nil && req.Max != nil:
		resp.Min, resp.Max = *req.Min, *req.Max
	default:
		c.JSON(400, ErrorResponse{
			Code:    400,
			Message: "invalid request body",
			Details: "either field or both min and max are required",
		})
		return
	}

	values, err := core.ParseField(req.Text, resp.Min, resp.Max)
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp.Values = values

	c.JSON(200, resp)
}

// CompareExpression 与标准 cron 语义对比
func (s *Server) CompareExpression(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{
			Code:    400,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	cmp, err := s.evaluator.Compare(req.Expression, req.Count)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(200, toCompareResponse(cmp))
}

// ListWeekdays 星期编号表
func (s *Server) ListWeekdays(c *gin.Context) {
	names := core.Weekdays()
	items := make([]WeekdayResponse, len(names))
	for i, name := range names {
		items[i] = WeekdayResponse{Day: i, Name: name}
	}
	c.JSON(200, gin.H{"weekdays": items})
}

// ListCatalog 列出目录中的命名表达式
func (s *Server) ListCatalog(c *gin.Context) {
	entries := s.catalog.Entries()

	items := make([]CatalogEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toCatalogEntryResponse(e))
	}

	c.JSON(200, ListCatalogResponse{
		Total: len(items),
		Items: items,
	})
}

// GetCatalogEntry 获取单个条目及其接下来的触发时间
func (s *Server) GetCatalogEntry(c *gin.Context) {
	entry, err := s.catalog.Get(c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	count := entry.Count
	if q := c.Query("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(400, ErrorResponse{Code: 400, Message: "invalid count", Details: err.Error()})
			return
		}
		count = n
	}

	occurrences, err := s.evaluator.Occurrences(entry.Expression, count)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := toCatalogEntryResponse(entry)
	resp.Upcoming = formatTimes(occurrences)
	c.JSON(200, resp)
}

// GetTimeline 合并目录中全部表达式的触发时间
func (s *Server) GetTimeline(c *gin.Context) {
	count := defaultTimelineCount
	if q := c.Query("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(400, ErrorResponse{Code: 400, Message: "invalid count", Details: err.Error()})
			return
		}
		count = n
	}

	heapType, err := core.ParseHeapType(c.Query("heap"))
	if err != nil {
		c.JSON(400, ErrorResponse{Code: 400, Message: "invalid heap", Details: err.Error()})
		return
	}

	entries, err := s.evaluator.Timeline(s.catalog.Expressions(), count, heapType)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(200, TimelineResponse{
		Heap:  heapType.String(),
		Total: len(entries),
		Items: toTimelineItems(entries),
	})
}

// GetStats 获取统计信息
func (s *Server) GetStats(c *gin.Context) {
	stats := StatsResponse{
		CatalogEntries: s.catalog.Len(),
		Subscribers:    s.eventBus.Subscribers(),
		DroppedEvents:  s.eventBus.Dropped(),
		Uptime:         time.Since(s.startTime).Round(time.Second).String(),
	}
	if s.wsServer != nil {
		stats.WebSocketClients = s.wsServer.Clients()
	}

	c.JSON(200, stats)
}

// HealthCheck 健康检查
func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// 辅助方法

// writeError 将 core 错误映射为 HTTP 状态码
func (s *Server) writeError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status == 500 {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, ErrorResponse{
		Code:    status,
		Message: message,
		Details: err.Error(),
	})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidFormat):
		return 400, "invalid cron expression"
	case errors.Is(err, core.ErrOutOfDomain):
		return 422, "cron field out of domain"
	case errors.Is(err, core.ErrEntryNotFound):
		return 404, "schedule not found"
	default:
		return 500, "internal error"
	}
}

func fieldsOf(expr *core.Expression) []FieldResponse {
	sets := [][]int{expr.Minutes, expr.Hours, expr.Days, expr.Months, nil}
	fields := make([]FieldResponse, 0, core.FieldCount)
	for f := core.FieldMinute; f <= core.FieldDayOfWeek; f++ {
		b := f.Bounds()
		values := sets[f]
		if f == core.FieldDayOfWeek {
			// 星期已映射为名称，这里重新展开数字
			values, _ = core.ParseField(expr.Text(f), b.Min, b.Max)
		}
		fields = append(fields, FieldResponse{
			Text:   expr.Text(f),
			Field:  f.String(),
			Min:    b.Min,
			Max:    b.Max,
			Values: values,
		})
	}
	return fields
}
