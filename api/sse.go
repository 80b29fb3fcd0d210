package api

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"cronplan/core"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleSSE(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	// 获取客户端过滤参数，支持重复参数或逗号分隔
	eventTypes := splitQuery(c.QueryArray("event_types"))
	names := splitQuery(c.QueryArray("names"))

	types := make([]core.EventType, 0, len(eventTypes))
	for _, t := range eventTypes {
		types = append(types, core.EventType(t))
	}

	// 订阅事件（类型由总线过滤，名称在这里过滤）
	subID, eventCh := s.eventBus.Subscribe(types...)
	defer s.eventBus.Unsubscribe(subID)

	c.Writer.WriteHeader(200)
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			if !matchSSEFilter(ev, names) {
				continue
			}

			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			c.Writer.Flush()
		}
	}
}

func matchSSEFilter(ev core.Event, names []string) bool {
	return len(names) == 0 || slices.Contains(names, ev.Name)
}

func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
