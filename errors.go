package socketsys

import (
	"errors"

	"github.com/dep2p/go-socketsys/internal/core/socketsys"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 能力与请求错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrUnsupported 后端不支持该操作，通过 *ConfigError 返回
	ErrUnsupported = socket.ErrUnsupported

	// ErrBuilderConsumed 连接构建器已使用
	ErrBuilderConsumed = socket.ErrBuilderConsumed

	// ErrNoRemoteAddress 连接请求缺少远端地址
	ErrNoRemoteAddress = socket.ErrNoRemoteAddress

	// ErrInvalidPort 端口超出范围
	ErrInvalidPort = socket.ErrInvalidPort

	// ────────────────────────────────────────────────────────────────────────
	// 句柄与系统错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrSocketClosed socket 已关闭
	ErrSocketClosed = socket.ErrSocketClosed

	// ErrSocketInUse socket 已连接或正在连接
	ErrSocketInUse = socket.ErrSocketInUse

	// ErrSystemClosed System 已关闭
	ErrSystemClosed = socketsys.ErrSystemClosed

	// ErrUnknownHost 主机名无法解析
	ErrUnknownHost = socketsys.ErrUnknownHost

	// ErrAppNotStarted 应用未启动
	ErrAppNotStarted = errors.New("socketsys: app not started")
)

// IsConfigError 判断 err 是否为能力不支持错误
func IsConfigError(err error) bool { return socket.IsConfigError(err) }
