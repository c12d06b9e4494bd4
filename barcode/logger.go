package barcode

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/ByLCY/barlabel/layout"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() { loggerPtr.Store(slog.New(nopHandler{})) }

// SetLogger 设置生成器与布局引擎共用的日志；传 nil 恢复静默。
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	layout.SetLogger(l.With("component", "layout"))
}

// Logger 返回当前日志。
func Logger() *slog.Logger { return loggerPtr.Load() }
