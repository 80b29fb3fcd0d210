package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cronplan/core"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix 所有环境变量的前缀，例如 CRONPLAN_PORT
const envPrefix = "CRONPLAN"

// Config 服务配置，全部来自环境变量（可由 .env 文件补充）
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	CatalogDir       string `envconfig:"CATALOG_DIR" default:"./schedules"`
	CatalogPattern   string `envconfig:"CATALOG_PATTERN" default:"*.json"`
	CatalogRecursive bool   `envconfig:"CATALOG_RECURSIVE" default:"false"`
	CatalogWatch     bool   `envconfig:"CATALOG_WATCH" default:"true"`

	LookaheadYears int    `envconfig:"LOOKAHEAD_YEARS" default:"100"`
	LegacyMerge    bool   `envconfig:"LEGACY_MERGE" default:"false"`
	Timezone       string `envconfig:"TIMEZONE"` // 为空使用本地时区

	EventBuffer int    `envconfig:"EVENT_BUFFER" default:"100"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// loadConfig 先加载 envFile（不存在则跳过，且不覆盖已有变量），再解析环境变量
func loadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
	}

	c := &Config{}
	if err := envconfig.Process(envPrefix, c); err != nil {
		return nil, fmt.Errorf("failed to process configuration values: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.LookaheadYears < 1 {
		return fmt.Errorf("%s_LOOKAHEAD_YEARS must be at least 1, got %d", envPrefix, c.LookaheadYears)
	}
	if c.EventBuffer < 1 {
		return fmt.Errorf("%s_EVENT_BUFFER must be at least 1, got %d", envPrefix, c.EventBuffer)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if _, err := c.location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid %s_LOG_LEVEL %q: %w", envPrefix, c.LogLevel, err)
	}
	return level, nil
}

func (c *Config) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid %s_TIMEZONE %q: %w", envPrefix, c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) mergeOrder() core.MergeOrder {
	if c.LegacyMerge {
		return core.MergeLegacy
	}
	return core.MergeChronological
}
