package log

import (
	"context"
	"log/slog"
	"sync"
)

// Entry 捕获的一条日志
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Capture 记录日志的 handler，用于在测试中断言某条日志确实输出过
//
//	c := log.NewCapture()
//	restore := c.Install()
//	defer restore()
type Capture struct {
	store *captureStore
	attrs []slog.Attr
	group string
}

type captureStore struct {
	mu      sync.Mutex
	entries []Entry
}

var _ slog.Handler = (*Capture)(nil)

// NewCapture 创建捕获 handler
func NewCapture() *Capture {
	return &Capture{store: &captureStore{}}
}

// Install 将自身设为默认 handler，返回恢复函数
func (c *Capture) Install() func() {
	prev := slog.Default()
	slog.SetDefault(slog.New(c))
	return func() { slog.SetDefault(prev) }
}

// Enabled 捕获所有级别
func (c *Capture) Enabled(context.Context, slog.Level) bool { return true }

// Handle 记录一条日志
func (c *Capture) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message, Attrs: make(map[string]any, len(c.attrs)+r.NumAttrs())}
	for _, a := range c.attrs {
		e.Attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if c.group != "" {
			key = c.group + "." + key
		}
		e.Attrs[key] = a.Value.Resolve().Any()
		return true
	})

	c.store.mu.Lock()
	c.store.entries = append(c.store.entries, e)
	c.store.mu.Unlock()
	return nil
}

// WithAttrs 返回带附加属性的 handler，共享同一存储
func (c *Capture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &Capture{store: c.store, group: c.group}
	next.attrs = append(append(next.attrs, c.attrs...), attrs...)
	return next
}

// WithGroup 返回带分组前缀的 handler
func (c *Capture) WithGroup(name string) slog.Handler {
	next := &Capture{store: c.store, attrs: c.attrs, group: name}
	if c.group != "" {
		next.group = c.group + "." + name
	}
	return next
}

// Entries 返回已捕获日志的快照
func (c *Capture) Entries() []Entry {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	out := make([]Entry, len(c.store.entries))
	copy(out, c.store.entries)
	return out
}

// Find 返回第一条满足条件的日志
func (c *Capture) Find(match func(Entry) bool) (Entry, bool) {
	for _, e := range c.Entries() {
		if match(e) {
			return e, true
		}
	}
	return Entry{}, false
}

// Reset 清空已捕获日志
func (c *Capture) Reset() {
	c.store.mu.Lock()
	c.store.entries = nil
	c.store.mu.Unlock()
}
