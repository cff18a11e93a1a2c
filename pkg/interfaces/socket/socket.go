package socket

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// ============================================================================
//                              常量
// ============================================================================

const (
	// DefaultBacklog 监听 socket 的默认积压队列长度
	DefaultBacklog = 100

	// NoTimeout 表示使用后端默认值（阻塞直到完成）
	NoTimeout time.Duration = -1
)

// ============================================================================
//                              后端类型
// ============================================================================

// Kind 后端类型
type Kind int

const (
	// KindStandard 基于 Go net 包的标准后端
	KindStandard Kind = iota
	// KindNative 基于原生系统调用的后端
	KindNative
	// KindTest 进程内测试后端
	KindTest
)

// String 返回后端名称
func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindNative:
		return "native"
	case KindTest:
		return "test"
	default:
		return "unknown"
	}
}

// ParseKind 从名称解析后端类型（大小写不敏感）
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "tcp":
		return KindStandard, nil
	case "native", "jni":
		return KindNative, nil
	case "test", "mem":
		return KindTest, nil
	default:
		return KindStandard, fmt.Errorf("unknown socket backend: %q", name)
	}
}

// ============================================================================
//                              句柄状态
// ============================================================================

// State socket 句柄状态
//
// 工厂层只负责进入以下状态的转换：
//
//	unopened → connecting → connected | failed
//	unopened → listening | failed
//
// closed 为终态。
type State int32

const (
	StateUnopened State = iota
	StateConnecting
	StateConnected
	StateListening
	StateFailed
	StateClosed
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateListening:
		return "listening"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              句柄接口
// ============================================================================

// Socket 出站/入站连接句柄
type Socket interface {
	// ID 返回句柄唯一标识
	ID() string

	// State 返回当前状态
	State() State

	// Conn 返回底层连接，未连接时为 nil
	Conn() net.Conn

	// LocalAddr 返回本地地址，未连接时为 nil
	LocalAddr() net.Addr

	// RemoteAddr 返回远端地址，未连接时为 nil
	RemoteAddr() net.Addr

	// IsTLS 是否为 TLS 连接
	IsTLS() bool

	// Close 关闭句柄
	Close() error
}

// ServerSocket 监听 socket
type ServerSocket interface {
	// Addr 返回实际监听地址（端口为 0 时返回系统分配的端口）
	Addr() net.Addr

	// Backlog 返回请求的积压队列长度
	Backlog() int

	// IsNative 是否由原生后端创建
	IsNative() bool

	// Accept 阻塞等待下一个入站连接
	Accept() (Socket, error)

	// Close 停止监听
	Close() error
}

// ============================================================================
//                              规范请求
// ============================================================================

// ConnectRequest 规范连接请求
//
// 所有 connect 便捷方法和构建器最终都归一化为一个 ConnectRequest。
// 构建完成后不可修改，只被消费一次。
type ConnectRequest struct {
	// Socket 可复用的已有句柄（可选）
	Socket Socket

	// Remote 远端地址（必需）
	Remote *net.TCPAddr

	// Local 本地绑定地址（可选）
	Local *net.TCPAddr

	// Timeout 连接超时，<= 0 表示使用后端默认值
	Timeout time.Duration

	// TLS 是否启用 TLS
	TLS bool

	// TLSProtocols 允许的 TLS 协议版本，例如 "TLSv1.2"、"TLSv1.3"
	TLSProtocols []string
}

// HasTimeout 是否设置了有效超时
func (r ConnectRequest) HasTimeout() bool {
	return r.Timeout > 0
}

// Validate 检查请求是否完整
func (r ConnectRequest) Validate() error {
	if r.Remote == nil {
		return ErrNoRemoteAddress
	}
	if r.Remote.Port < 0 || r.Remote.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, r.Remote.Port)
	}
	return nil
}

// ============================================================================
//                              后端接口
// ============================================================================

// Backend 后端必须实现的规范操作
type Backend interface {
	// Kind 返回后端类型
	Kind() Kind

	// OpenServerSocket 规范监听操作
	//
	// ip 为 nil 表示通配绑定；native 表示调用方偏好原生实现。
	OpenServerSocket(ip net.IP, port, backlog int, native bool) (ServerSocket, error)

	// Connect 规范连接操作
	Connect(ctx context.Context, req ConnectRequest) (Socket, error)

	// CreateSocket 返回一个未连接的句柄
	CreateSocket() Socket
}

// UnixBackend 支持 Unix 域 socket 的后端
type UnixBackend interface {
	// ConnectUnix 连接 Unix 域 socket，s 为可复用句柄（可选）
	ConnectUnix(ctx context.Context, s Socket, path string) (Socket, error)

	// OpenUnixServerSocket 在 path 上监听 Unix 域 socket
	OpenUnixServerSocket(path string) (ServerSocket, error)
}

// BuilderBackend 支持流式连接构建器的后端
type BuilderBackend interface {
	// ValidateRequest 在构建器执行连接前校验请求
	ValidateRequest(req ConnectRequest) error
}

// SubSystemBackend 支持按名称创建隔离子系统的后端
type SubSystemBackend interface {
	// SubSystem 返回名称对应的后端，可以返回自身
	SubSystem(name string) Backend
}

// NativeProber 报告是否使用原生传输
type NativeProber interface {
	IsNative() bool
}

// Capabilities 后端能力描述
type Capabilities struct {
	Native     bool
	Unix       bool
	Builder    bool
	SubSystems bool
}

// CapabilitiesOf 探测后端支持的可选能力
func CapabilitiesOf(b Backend) Capabilities {
	var caps Capabilities
	if p, ok := b.(NativeProber); ok {
		caps.Native = p.IsNative()
	}
	_, caps.Unix = b.(UnixBackend)
	_, caps.Builder = b.(BuilderBackend)
	_, caps.SubSystems = b.(SubSystemBackend)
	return caps
}
