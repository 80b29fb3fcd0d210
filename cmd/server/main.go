package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cronplan/api"
	"cronplan/core"
	"cronplan/internal/errwrap"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := loadConfig(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, errwrap.Wrap(err, "error loading configuration"))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	level, _ := cfg.level()
	loc, _ := cfg.location()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 事件总线
	eventBus := core.NewEventBus(cfg.EventBuffer)
	defer eventBus.Close()

	// 求值器
	enumerator := core.NewEnumerator(core.EnumeratorOptions{
		Location:       loc,
		LookaheadYears: cfg.LookaheadYears,
		MergeOrder:     cfg.mergeOrder(),
		Logger:         logger,
		EventBus:       eventBus,
	})

	// 命名表达式目录
	catalog, err := core.NewCatalog(enumerator, eventBus, core.CatalogOptions{
		Dir:           cfg.CatalogDir,
		Pattern:       cfg.CatalogPattern,
		Recursive:     cfg.CatalogRecursive,
		EnableWatcher: cfg.CatalogWatch,
		Logger:        logger,
	})
	if err != nil {
		return errwrap.Wrap(err, "error creating catalog")
	}
	if err := catalog.Start(); err != nil {
		return errwrap.Wrap(err, "error starting catalog")
	}
	defer catalog.Stop()

	// 创建API服务器
	server := api.NewServer(api.ServerOptions{
		Evaluator: enumerator,
		Catalog:   catalog,
		EventBus:  eventBus,
		WSServer:  core.NewWSServer(eventBus, enumerator, logger),
		Port:      cfg.Port,
		Logger:    logger,
	})

	// 启动HTTP API
	if err := server.Start(); err != nil {
		return errwrap.Wrap(err, "error starting http server")
	}
	logger.Info("cronplan started",
		"catalog_dir", cfg.CatalogDir,
		"entries", catalog.Len(),
		"lookahead_years", cfg.LookaheadYears,
		"timezone", loc.String(),
	)

	// 优雅关闭处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// 优雅关闭HTTP（5秒超时）
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logger.Warn("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
	return nil
}
