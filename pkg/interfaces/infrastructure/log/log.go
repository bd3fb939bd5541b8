// Package log 定义认证服务的日志接口
//
// 所有组件通过 Logger 接口记录日志，具体实现见 internal/core/infrastructure/log。
// 结构化字段通过 With(key, value, ...) 附加，例如 With("module", "authn.registry")。
//
// 不提供 Fatal 级别：认证失败、预言机不可用等都以错误返回给调用方，
// 进程退出只由 cmd 入口决定。
package log

import "go.uber.org/zap"

// Logger 日志记录器
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})

	// With 返回附加了键值字段的子 Logger
	With(args ...interface{}) Logger

	// Sync 刷新缓冲区，关闭前调用
	Sync() error

	// GetZapLogger 返回底层 zap 实例，供 gin 访问日志与 fx 事件日志使用
	GetZapLogger() *zap.Logger
}
