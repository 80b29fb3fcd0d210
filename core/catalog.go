package core

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CatalogFile 表达式定义文件的 JSON 格式
type CatalogFile struct {
	Name        string   `json:"name"`       // 为空时使用文件名
	Expression  string   `json:"expression"` // 5 字段 cron 表达式
	Count       int      `json:"count"`      // 默认返回的触发次数
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// CatalogEntry 目录中的一个命名表达式（只保存定义，不保存计算结果）
type CatalogEntry struct {
	Name        string    `json:"name"`
	Expression  string    `json:"expression"`
	Count       int       `json:"count"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// CatalogOptions 目录加载配置
type CatalogOptions struct {
	// 目录路径，默认 "./schedules"
	Dir string

	// 文件匹配模式，默认 "*.json"
	Pattern string

	// 是否递归扫描子目录
	Recursive bool

	// 是否启用实时监控
	EnableWatcher bool

	// 文件写入后等待多久再读取，默认 100ms
	SettleDelay time.Duration

	Logger *slog.Logger
}

// Catalog 从目录加载命名表达式，可选通过 fsnotify 监控变更
type Catalog struct {
	enumerator *Enumerator
	eventBus   *EventBus
	options    CatalogOptions
	logger     *slog.Logger
	watcher    *fsnotify.Watcher

	mu      sync.RWMutex
	entries map[string]CatalogEntry
	sources map[string]string // 文件路径 -> 条目名称

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewCatalog 创建目录，eventBus 可为 nil
func NewCatalog(enumerator *Enumerator, eventBus *EventBus, options CatalogOptions) (*Catalog, error) {
	if enumerator == nil {
		enumerator = NewEnumerator(EnumeratorOptions{})
	}
	if options.Pattern == "" {
		options.Pattern = "*.json"
	}
	if options.Dir == "" {
		options.Dir = "./schedules"
	}
	if options.SettleDelay <= 0 {
		options.SettleDelay = 100 * time.Millisecond
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if _, err := filepath.Match(options.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid catalog pattern %q: %w", options.Pattern, err)
	}

	// 确保目录存在
	if err := os.MkdirAll(options.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create catalog dir failed: %w", err)
	}

	return &Catalog{
		enumerator: enumerator,
		eventBus:   eventBus,
		options:    options,
		logger:     options.Logger.With("component", "catalog"),
		entries:    make(map[string]CatalogEntry),
		sources:    make(map[string]string),
		stopCh:     make(chan struct{}),
	}, nil
}

// Start 扫描已有文件，并按配置启动监控
func (c *Catalog) Start() error {
	if err := c.ScanAndLoad(); err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}

	if c.options.EnableWatcher {
		if err := c.startWatcher(); err != nil {
			return fmt.Errorf("start watcher failed: %w", err)
		}
	}
	return nil
}

// Stop 停止监控
func (c *Catalog) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if c.watcher != nil {
			c.watcher.Close()
		}
	})
	c.wg.Wait()
}

// ScanAndLoad 扫描目录并加载所有匹配的定义文件。单个文件失败只记录，不中断扫描。
func (c *Catalog) ScanAndLoad() error {
	var files []string

	err := filepath.WalkDir(c.options.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !c.options.Recursive && path != c.options.Dir {
				return filepath.SkipDir
			}
			return nil
		}
		if c.matches(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := c.LoadFile(f); err != nil {
			c.logger.Warn("failed to load schedule file", "path", f, "error", err)
		}
	}
	return nil
}

// LoadFile 加载（或重新加载）单个定义文件
func (c *Catalog) LoadFile(path string) error {
	entry, err := c.readEntry(path)
	if err != nil {
		c.publish(Event{
			Type:     EventCatalogFailed,
			Error:    err.Error(),
			Metadata: map[string]interface{}{"source": path},
		})
		return err
	}

	c.mu.Lock()
	if previous, ok := c.sources[path]; ok && previous != entry.Name {
		c.dropLocked(path, previous)
	}
	c.entries[entry.Name] = entry
	c.sources[path] = entry.Name
	c.mu.Unlock()

	c.logger.Info("loaded schedule", "name", entry.Name, "expression", entry.Expression, "path", path)
	c.publish(Event{
		Type:       EventCatalogLoaded,
		Name:       entry.Name,
		Expression: entry.Expression,
		Metadata:   map[string]interface{}{"source": path},
	})
	return nil
}

// RemoveFile 移除某个文件提供的条目，文件未加载过时返回 false
func (c *Catalog) RemoveFile(path string) bool {
	c.mu.Lock()
	name, ok := c.sources[path]
	if ok {
		c.dropLocked(path, name)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	c.logger.Info("removed schedule", "name", name, "path", path)
	c.publish(Event{
		Type:     EventCatalogRemoved,
		Name:     name,
		Metadata: map[string]interface{}{"source": path},
	})
	return true
}

// dropLocked 同名条目可能已被其它文件覆盖，只删除仍属于该文件的条目
func (c *Catalog) dropLocked(path, name string) {
	delete(c.sources, path)
	if entry, ok := c.entries[name]; ok && entry.Source == path {
		delete(c.entries, name)
	}
}

func (c *Catalog) readEntry(path string) (CatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("read file failed: %w", err)
	}

	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return CatalogEntry{}, fmt.Errorf("parse json failed: %w", err)
	}

	parsed, err := Parse(file.Expression)
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("schedule %s: %w", path, err)
	}

	name := file.Name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return CatalogEntry{
		Name:        name,
		Expression:  parsed.String(),
		Count:       normalizeCount(file.Count),
		Description: file.Description,
		Tags:        file.Tags,
		Source:      path,
		LoadedAt:    time.Now(),
	}, nil
}

// Entries 按名称排序返回全部条目
func (c *Catalog) Entries() []CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Get 按名称查找条目
func (c *Catalog) Get(name string) (CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	if !ok {
		return CatalogEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

// Expressions 名称到表达式的映射，用于合并时间线
func (c *Catalog) Expressions() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.entries))
	for name, e := range c.entries {
		out[name] = e.Expression
	}
	return out
}

// Len 条目数量
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Upcoming 计算某个条目接下来的触发时间，count<=0 时使用条目自身的 count
func (c *Catalog) Upcoming(name string, count int) ([]time.Time, error) {
	entry, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		count = entry.Count
	}
	return c.enumerator.Occurrences(entry.Expression, count)
}

func (c *Catalog) matches(path string) bool {
	matched, _ := filepath.Match(c.options.Pattern, filepath.Base(path))
	return matched
}

func (c *Catalog) publish(event Event) {
	if c.eventBus != nil {
		c.eventBus.Publish(event)
	}
}

// startWatcher 启动文件系统监控
func (c *Catalog) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = watcher

	if err := watcher.Add(c.options.Dir); err != nil {
		watcher.Close()
		return err
	}

	if c.options.Recursive {
		filepath.WalkDir(c.options.Dir, func(path string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() && path != c.options.Dir {
				watcher.Add(path)
			}
			return nil
		})
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.stopCh:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				c.handleEvent(event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("watcher error", "error", err)
			}
		}
	}()

	c.logger.Info("watching schedule directory", "dir", c.options.Dir)
	return nil
}

func (c *Catalog) handleEvent(event fsnotify.Event) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		c.RemoveFile(event.Name)

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		if c.options.Recursive {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				c.watcher.Add(event.Name)
				return
			}
		}
		if !c.matches(event.Name) {
			return
		}
		// 等待写入完成，避免读到不完整的文件
		select {
		case <-time.After(c.options.SettleDelay):
		case <-c.stopCh:
			return
		}
		if err := c.LoadFile(event.Name); err != nil {
			c.logger.Warn("failed to load schedule file", "path", event.Name, "error", err)
		}
	}
}
