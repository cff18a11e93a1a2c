package socket

import "errors"

var (
	// ErrUnsupported 后端不支持该操作（配置类错误，不可重试）
	ErrUnsupported = errors.New("socket: operation not supported")

	// ErrBuilderConsumed 构建器已被消费
	ErrBuilderConsumed = errors.New("socket: connect builder already consumed")

	// ErrNoRemoteAddress 缺少远端地址
	ErrNoRemoteAddress = errors.New("socket: remote address required")

	// ErrInvalidPort 端口超出范围
	ErrInvalidPort = errors.New("socket: invalid port")

	// ErrSocketClosed 句柄已关闭
	ErrSocketClosed = errors.New("socket: closed")

	// ErrSocketInUse 句柄已连接，不能复用
	ErrSocketInUse = errors.New("socket: handle already in use")
)

// ConfigError 配置错误：后端缺少某项能力
//
// 调用方应将其视为配置期问题，而不是瞬时 I/O 失败。
type ConfigError struct {
	// Capability 缺失的能力描述
	Capability string
}

// Error 实现 error 接口
func (e *ConfigError) Error() string {
	return "socket: " + e.Capability + " not supported"
}

// Unwrap 返回 ErrUnsupported，便于 errors.Is 判断
func (e *ConfigError) Unwrap() error {
	return ErrUnsupported
}

// Unsupported 创建缺少指定能力的配置错误
func Unsupported(capability string) error {
	return &ConfigError{Capability: capability}
}

// IsConfigError 判断 err 是否为配置错误
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
