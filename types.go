package socketsys

import (
	"github.com/dep2p/go-socketsys/internal/core/socketsys"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/netif"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// System socket 工厂
	System = socketsys.System

	// Registry 进程默认系统与作用域覆盖
	Registry = socketsys.Registry

	// ConnectBuilder 一次性连接构建器
	ConnectBuilder = socketsys.ConnectBuilder

	// SystemOption System 构造选项
	SystemOption = socketsys.Option

	// Socket 流式 socket
	Socket = socket.Socket

	// ServerSocket 监听 socket
	ServerSocket = socket.ServerSocket

	// Backend socket 后端
	Backend = socket.Backend

	// Kind 后端类型
	Kind = socket.Kind

	// State 句柄状态
	State = socket.State

	// Capabilities 后端能力
	Capabilities = socket.Capabilities

	// ConnectRequest 连接请求
	ConnectRequest = socket.ConnectRequest

	// ConfigError 后端不支持某项能力
	ConfigError = socket.ConfigError

	// InterfaceProvider 网络接口来源
	InterfaceProvider = netif.Provider

	// InterfaceDescriptor 网络接口快照
	InterfaceDescriptor = netif.Descriptor
)

// 默认值
const (
	// NoTimeout 连接使用后端默认超时
	NoTimeout = socket.NoTimeout

	// DefaultBacklog 便捷监听方法的积压队列长度
	DefaultBacklog = socket.DefaultBacklog
)

// 后端类型
const (
	KindStandard = socket.KindStandard
	KindNative   = socket.KindNative
	KindTest     = socket.KindTest
)

// 句柄状态
const (
	StateUnopened   = socket.StateUnopened
	StateConnecting = socket.StateConnecting
	StateConnected  = socket.StateConnected
	StateListening  = socket.StateListening
	StateFailed     = socket.StateFailed
	StateClosed     = socket.StateClosed
)

// 系统构造选项
var (
	WithInterfaceProvider = socketsys.WithInterfaceProvider
	WithAddressCache      = socketsys.WithAddressCache
	WithHardwareResolver  = socketsys.WithHardwareResolver
	WithSystemTestMode    = socketsys.WithTestMode
	WithHardwareTestMode  = socketsys.WithHardwareTestMode
	WithSystemAddressTTL  = socketsys.WithAddressTTL
	WithClock             = socketsys.WithClock
	WithReporter          = socketsys.WithReporter
	WithDefaultBacklog    = socketsys.WithDefaultBacklog
	StaticInterfaces      = netif.Static
	SystemInterfaces      = netif.NewSystemProvider
)
