package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cronplan/core"

	"github.com/gin-gonic/gin"
)

// Evaluator 表达式求值接口（core.Enumerator 实现）
type Evaluator interface {
	Occurrences(expression string, maxCount int) ([]time.Time, error)
	Compare(expression string, count int) (*core.Comparison, error)
	Timeline(expressions map[string]string, count int, heapType core.HeapType) ([]core.TimelineEntry, error)
}

// CatalogReader 命名表达式目录的只读接口（core.Catalog 实现）
type CatalogReader interface {
	Entries() []core.CatalogEntry
	Get(name string) (core.CatalogEntry, error)
	Expressions() map[string]string
	Len() int
}

// ServerOptions 服务器配置
type ServerOptions struct {
	Evaluator Evaluator
	Catalog   CatalogReader  // 可为 nil，此时目录为空
	EventBus  *core.EventBus // 可为 nil，SSE 不会收到事件
	WSServer  *core.WSServer // 为 nil 时不注册 /ws
	Port      string
	Logger    *slog.Logger
}

// Server HTTP API 服务器
type Server struct {
	evaluator  Evaluator
	catalog    CatalogReader
	eventBus   *core.EventBus
	wsServer   *core.WSServer
	engine     *gin.Engine
	httpServer *http.Server
	port       string
	startTime  time.Time
	logger     *slog.Logger
}

// NewServer 创建API服务器
func NewServer(opts ServerOptions) *Server {
	if opts.Port == "" {
		opts.Port = "8080"
	}
	if opts.Evaluator == nil {
		opts.Evaluator = core.NewEnumerator(core.EnumeratorOptions{})
	}
	if opts.Catalog == nil {
		opts.Catalog = emptyCatalog{}
	}
	if opts.EventBus == nil {
		opts.EventBus = core.NewEventBus(100)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		evaluator: opts.Evaluator,
		catalog:   opts.Catalog,
		eventBus:  opts.EventBus,
		wsServer:  opts.WSServer,
		engine:    gin.New(),
		port:      opts.Port,
		startTime: time.Now(),
		logger:    opts.Logger.With("component", "api"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	// 恢复中间件
	s.engine.Use(gin.Recovery())

	// 日志中间件（自定义格式）
	s.engine.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))

	// CORS
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api/v1")
	{
		// 表达式求值
		api.POST("/check", s.CheckExpression)
		api.POST("/occurrences", s.ListOccurrences)
		api.GET("/occurrences", s.ListOccurrences)
		api.POST("/fields", s.ExpandField)
		api.POST("/compare", s.CompareExpression)
		api.GET("/weekdays", s.ListWeekdays)

		// 命名表达式目录
		catalog := api.Group("/catalog")
		{
			catalog.GET("", s.ListCatalog)
			catalog.GET("/:name", s.GetCatalogEntry)
		}
		api.GET("/timeline", s.GetTimeline)

		// 统计与监控
		api.GET("/stats", s.GetStats)
		api.GET("/health", s.HealthCheck)
	}

	// 404处理
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, ErrorResponse{
			Code:    404,
			Message: "resource not found",
		})
	})

	// WebSocket 端点
	if s.wsServer != nil {
		s.engine.GET("/ws", s.wsServer.Handle)
	}

	// SSE 备选方案（对于不支持WebSocket的客户端）
	s.engine.GET("/sse/events", s.handleSSE)
}

// Handler 返回底层 http.Handler（测试和嵌入使用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 启动HTTP服务（非阻塞）
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.port)

	if s.wsServer != nil {
		s.wsServer.Start() // 启动WebSocket管理
	}

	// 使用http.Server支持优雅关闭
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv := s.httpServer
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	s.logger.Info("http api server listening", "addr", "http://localhost"+addr)
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if s.wsServer != nil {
		s.wsServer.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Port 获取端口
func (s *Server) Port() string {
	return s.port
}

// emptyCatalog 未配置目录时使用
type emptyCatalog struct{}

func (emptyCatalog) Entries() []core.CatalogEntry { return nil }

func (emptyCatalog) Get(string) (core.CatalogEntry, error) {
	return core.CatalogEntry{}, core.ErrEntryNotFound
}

func (emptyCatalog) Expressions() map[string]string { return map[string]string{} }
func (emptyCatalog) Len() int                       { return 0 }
