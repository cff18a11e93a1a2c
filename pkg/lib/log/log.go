// Package log 提供 socketsys 统一日志接口
//
// 基于 Go 标准库 log/slog 封装。每个组件通过 Logger(component) 获取
// 一个 LazyLogger，日志调用时才读取当前默认 handler，因此 SetOutput
// 可以在组件初始化之后切换输出目标。
//
// 环境变量:
//
//	SOCKETSYS_LOG_LEVEL=debug|info|warn|error
//	SOCKETSYS_LOG_FORMAT=text|json
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// 环境变量名
const (
	EnvLogLevel  = "SOCKETSYS_LOG_LEVEL"
	EnvLogFormat = "SOCKETSYS_LOG_FORMAT"
)

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stderr
	level              = new(slog.LevelVar)
	useJSON  bool
)

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// Default 返回默认 logger
func Default() *slog.Logger {
	return slog.Default()
}

// SetOutput 设置日志输出目标
//
// 重新创建默认 logger，保留当前级别与格式。
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
	rebuild()
}

// SetOutputWithLevel 同时设置日志输出目标和级别
func SetOutputWithLevel(w io.Writer, lvl slog.Level) {
	level.Set(lvl)
	SetOutput(w)
}

// SetLevel 设置日志级别，已创建的 LazyLogger 立即生效
func SetLevel(lvl slog.Level) {
	level.Set(lvl)
}

// SetJSON 切换 JSON 输出格式
func SetJSON(enabled bool) {
	outputMu.Lock()
	useJSON = enabled
	outputMu.Unlock()
	rebuild()
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// rebuild 按当前输出/格式重建默认 handler
func rebuild() {
	outputMu.Lock()
	w, jsonFormat := output, useJSON
	outputMu.Unlock()

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if jsonFormat {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(h))
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler。
//
//	var logger = log.Logger("socketsys/tcp")
//	logger.Debug("连接建立", "remote", addr)
type LazyLogger struct {
	component string
}

func (l *LazyLogger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.base().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.base().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.base().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.base().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.base().DebugContext(ctx, msg, args...)
}

// WarnContext 带 context 的 Warn 日志
func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.base().WarnContext(ctx, msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.base().With(args...)
}

// Component 返回组件名
func (l *LazyLogger) Component() string {
	return l.component
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// ============================================================================
//                              工具函数
// ============================================================================

// TruncateID 安全截取 ID 用于日志显示
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}

// ============================================================================
//                              初始化
// ============================================================================

func init() {
	level.Set(slog.LevelInfo)
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level.Set(lvl)
	}
	useJSON = strings.EqualFold(os.Getenv(EnvLogFormat), "json")
	rebuild()
}
