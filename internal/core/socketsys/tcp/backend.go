package tcp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/handle"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys/tcp")

// ============================================================================
//                              配置
// ============================================================================

// Options 标准后端选项
type Options struct {
	// DialTimeout 请求未指定超时时使用的连接超时，0 表示不限制
	DialTimeout time.Duration

	// KeepAlive TCP keep-alive 周期，0 使用系统默认值
	KeepAlive time.Duration

	// TLSConfig TLS 基础配置（根证书、客户端证书等）
	TLSConfig *tls.Config

	// TLSProtocols 默认允许的 TLS 协议
	TLSProtocols []string

	// Control 拨号前对原始 socket 的设置回调
	Control func(network, address string, c syscall.RawConn) error
}

// Option 选项函数
type Option func(*Options)

// WithDialTimeout 设置默认连接超时
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.DialTimeout = d }
}

// WithKeepAlive 设置 keep-alive 周期
func WithKeepAlive(d time.Duration) Option {
	return func(o *Options) { o.KeepAlive = d }
}

// WithTLSConfig 设置 TLS 基础配置
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *Options) { o.TLSConfig = cfg }
}

// WithTLSProtocols 设置默认 TLS 协议
func WithTLSProtocols(names ...string) Option {
	return func(o *Options) { o.TLSProtocols = names }
}

// WithDialControl 设置拨号 socket 的 Control 回调
func WithDialControl(fn func(network, address string, c syscall.RawConn) error) Option {
	return func(o *Options) { o.Control = fn }
}

// ============================================================================
//                              Backend 实现
// ============================================================================

// Backend 标准 socket 后端
type Backend struct {
	opts   Options
	closed atomic.Bool
}

var (
	_ socket.Backend        = (*Backend)(nil)
	_ socket.UnixBackend    = (*Backend)(nil)
	_ socket.BuilderBackend = (*Backend)(nil)
	_ socket.NativeProber   = (*Backend)(nil)
)

// New 创建标准后端
func New(opts ...Option) *Backend {
	o := Options{TLSProtocols: DefaultProtocols}
	for _, opt := range opts {
		opt(&o)
	}
	return &Backend{opts: o}
}

// Kind 返回 KindStandard
func (b *Backend) Kind() socket.Kind { return socket.KindStandard }

// IsNative 标准后端不使用原生传输
func (b *Backend) IsNative() bool { return false }

// CreateSocket 返回未连接的句柄
func (b *Backend) CreateSocket() socket.Socket { return handle.New() }

// OpenServerSocket 在 ip:port 上监听
//
// Go 运行时按系统上限设置 backlog，这里只记录请求值。native 偏好被忽略。
func (b *Backend) OpenServerSocket(ip net.IP, port, backlog int, native bool) (socket.ServerSocket, error) {
	if b.closed.Load() {
		return nil, ErrBackendClosed
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", socket.ErrInvalidPort, port)
	}

	addr := listenAddr(ip, port)
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("监听 %s 失败: %w", addr, err)
	}

	logger.Debug("监听已打开", "addr", ln.Addr().String(), "backlog", backlog, "nativeRequested", native)
	return handle.NewListener(ln, backlog, false), nil
}

// Connect 执行规范连接请求
func (b *Backend) Connect(ctx context.Context, req socket.ConnectRequest) (socket.Socket, error) {
	if b.closed.Load() {
		return nil, ErrBackendClosed
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var tlsCfg *tls.Config
	if req.TLS {
		cfg, err := b.clientTLSConfig(req)
		if err != nil {
			return nil, err
		}
		tlsCfg = cfg
	}

	h, err := handle.Claim(req.Socket)
	if err != nil {
		return nil, err
	}

	timeout := b.opts.DialTimeout
	if req.HasTimeout() {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dialer := &net.Dialer{KeepAlive: b.opts.KeepAlive, Control: b.opts.Control}
	if req.Local != nil {
		dialer.LocalAddr = req.Local
	}

	remote := req.Remote.String()
	conn, err := dialer.DialContext(ctx, "tcp", remote)
	if err != nil {
		h.Fail()
		return nil, fmt.Errorf("连接 %s 失败: %w", remote, err)
	}

	if tlsCfg != nil {
		tlsConn := tls.Client(conn, tlsCfg)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = conn.Close()
			h.Fail()
			return nil, fmt.Errorf("TLS 握手 %s 失败: %w", remote, err)
		}
		conn = tlsConn
	}

	if err := h.Complete(conn); err != nil {
		return nil, err
	}
	logger.Debug("连接已建立", "remote", remote, "tls", req.TLS, "socket", log.TruncateID(h.ID(), 8))
	return h, nil
}

// ValidateRequest 构建器执行前的校验
func (b *Backend) ValidateRequest(req socket.ConnectRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.TLS && len(req.TLSProtocols) > 0 {
		if _, _, err := ParseProtocols(req.TLSProtocols); err != nil {
			return err
		}
	}
	return nil
}

// Close 关闭后端，之后的操作返回 ErrBackendClosed
func (b *Backend) Close() error {
	b.closed.Store(true)
	return nil
}

func (b *Backend) clientTLSConfig(req socket.ConnectRequest) (*tls.Config, error) {
	protocols := req.TLSProtocols
	if len(protocols) == 0 {
		protocols = b.opts.TLSProtocols
	}
	return NewConfigBuilder(b.opts.TLSConfig).
		WithProtocols(protocols).
		WithServerName(serverNameFor(req.Remote)).
		Build()
}

func listenAddr(ip net.IP, port int) string {
	host := ""
	if ip != nil && !ip.IsUnspecified() {
		host = ip.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
