package socketsys

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/dep2p/go-socketsys/internal/core/metrics"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/localaddr"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("core/socketsys")

// ============================================================================
//                              System 结构
// ============================================================================

// System socket 工厂
//
// System 对并发调用是安全的。
type System struct {
	backend  socket.Backend
	addrs    *localaddr.Cache
	hw       *localaddr.Resolver
	reporter metrics.Reporter
	backlog  int

	mu      sync.Mutex
	servers map[*trackedServer]struct{}
	subs    map[string]*System

	closed atomic.Bool
}

// New 创建基于 backend 的 System
func New(backend socket.Backend, opts ...Option) *System {
	o := &options{reporter: metrics.Nop{}, backlog: socket.DefaultBacklog}
	for _, opt := range opts {
		opt(o)
	}

	s := &System{
		backend:  backend,
		addrs:    o.buildCache(),
		hw:       o.buildResolver(),
		reporter: o.reporter,
		backlog:  o.backlog,
		servers:  make(map[*trackedServer]struct{}),
		subs:     make(map[string]*System),
	}
	logger.Debug("socket 系统已创建", "backend", backend.Kind().String(), "addressTTL", s.addrs.TTL())
	return s
}

// derive 创建共享地址缓存与指标的子系统
func (s *System) derive(backend socket.Backend) *System {
	return &System{
		backend:  backend,
		addrs:    s.addrs,
		hw:       s.hw,
		reporter: s.reporter,
		backlog:  s.backlog,
		servers:  make(map[*trackedServer]struct{}),
		subs:     make(map[string]*System),
	}
}

// Backend 返回底层后端
func (s *System) Backend() socket.Backend { return s.backend }

// Kind 返回后端类型
func (s *System) Kind() socket.Kind { return s.backend.Kind() }

// IsNative 后端是否使用原生传输
func (s *System) IsNative() bool { return socket.CapabilitiesOf(s.backend).Native }

// Capabilities 返回后端能力
func (s *System) Capabilities() socket.Capabilities { return socket.CapabilitiesOf(s.backend) }

// String 返回 "System[<kind>]"
func (s *System) String() string { return "System[" + s.backend.Kind().String() + "]" }

// ============================================================================
//                              地址与标识
// ============================================================================

// LocalAddresses 返回已排序的本地地址
func (s *System) LocalAddresses() []net.IP { return s.addrs.LocalAddresses() }

// HostAddress 返回首选本地地址，无地址时为 "127.0.0.1"
func (s *System) HostAddress() string { return s.addrs.HostAddress() }

// HardwareAddress 返回主机硬件标识，可能为空
func (s *System) HardwareAddress() []byte { return s.hw.HardwareAddress() }

// InvalidateAddresses 丢弃地址缓存
func (s *System) InvalidateAddresses() { s.addrs.Invalidate() }

// AddressCache 返回地址缓存
func (s *System) AddressCache() *localaddr.Cache { return s.addrs }

// ============================================================================
//                              监听
// ============================================================================

// OpenServerSocket 在通配地址上监听 port
func (s *System) OpenServerSocket(port int) (socket.ServerSocket, error) {
	return s.OpenServerSocketWith(nil, port, s.backlog, true)
}

// OpenServerSocketAddr 在 address 上监听 port，空地址表示通配
func (s *System) OpenServerSocketAddr(address string, port int) (socket.ServerSocket, error) {
	ip, err := resolveListenIP(context.Background(), address)
	if err != nil {
		return nil, err
	}
	return s.OpenServerSocketWith(ip, port, s.backlog, true)
}

// OpenServerSocketWith 规范监听操作
func (s *System) OpenServerSocketWith(ip net.IP, port, backlog int, native bool) (socket.ServerSocket, error) {
	if s.closed.Load() {
		return nil, ErrSystemClosed
	}
	ss, err := s.backend.OpenServerSocket(ip, port, backlog, native)
	s.reporter.LogListen(s.Kind(), err)
	if err != nil {
		return nil, err
	}
	return s.track(ss), nil
}

// OpenUnixServerSocket 监听 Unix 域 socket
func (s *System) OpenUnixServerSocket(path string) (socket.ServerSocket, error) {
	if s.closed.Load() {
		return nil, ErrSystemClosed
	}
	ub, ok := s.backend.(socket.UnixBackend)
	if !ok {
		err := socket.Unsupported("unix sockets")
		s.reporter.LogListen(s.Kind(), err)
		return nil, err
	}
	ss, err := ub.OpenUnixServerSocket(path)
	s.reporter.LogListen(s.Kind(), err)
	if err != nil {
		return nil, err
	}
	return s.track(ss), nil
}

// ============================================================================
//                              连接
// ============================================================================

// Connect 连接 address:port，不设超时
func (s *System) Connect(address string, port int) (socket.Socket, error) {
	ip, err := resolveConnectIP(context.Background(), address)
	if err != nil {
		return nil, err
	}
	return s.ConnectTLS(ip, port, socket.NoTimeout, false)
}

// ConnectTimeout 连接 ip:port
func (s *System) ConnectTimeout(ip net.IP, port int, timeout time.Duration) (socket.Socket, error) {
	return s.ConnectTLS(ip, port, timeout, false)
}

// ConnectTLS 连接 ip:port，tls 为 true 时进行 TLS 握手
func (s *System) ConnectTLS(ip net.IP, port int, timeout time.Duration, tls bool) (socket.Socket, error) {
	return s.ConnectWith(nil, &net.TCPAddr{IP: ip, Port: port}, nil, timeout, tls)
}

// ConnectAddr 连接 addr
func (s *System) ConnectAddr(addr *net.TCPAddr, timeout time.Duration) (socket.Socket, error) {
	return s.ConnectWith(nil, addr, nil, timeout, false)
}

// ConnectAddrTLS 连接 addr，tls 为 true 时进行 TLS 握手
func (s *System) ConnectAddrTLS(addr *net.TCPAddr, timeout time.Duration, tls bool) (socket.Socket, error) {
	return s.ConnectWith(nil, addr, nil, timeout, tls)
}

// ConnectWith 规范连接操作
//
// sock 为可复用句柄（可选），local 为本地绑定地址（可选）。
// timeout <= 0 表示使用后端默认值。
func (s *System) ConnectWith(sock socket.Socket, remote, local *net.TCPAddr, timeout time.Duration, tls bool) (socket.Socket, error) {
	return s.connect(context.Background(), socket.ConnectRequest{
		Socket:  sock,
		Remote:  remote,
		Local:   local,
		Timeout: timeout,
		TLS:     tls,
	})
}

func (s *System) connect(ctx context.Context, req socket.ConnectRequest) (socket.Socket, error) {
	if s.closed.Load() {
		return nil, ErrSystemClosed
	}
	start := time.Now()
	sock, err := s.backend.Connect(ctx, req)
	s.reporter.LogConnect(s.Kind(), req.TLS, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return sock, nil
}

// NewConnectBuilder 返回流式连接构建器
//
// 后端不支持构建器时返回配置错误。
func (s *System) NewConnectBuilder() (*ConnectBuilder, error) {
	bb, ok := s.backend.(socket.BuilderBackend)
	if !ok {
		return nil, socket.Unsupported("connect builder")
	}
	return &ConnectBuilder{sys: s, validator: bb}, nil
}

// ConnectUnix 连接 Unix 域 socket
func (s *System) ConnectUnix(path string) (socket.Socket, error) {
	return s.ConnectUnixSocket(nil, path)
}

// ConnectUnixSocket 使用可复用句柄连接 Unix 域 socket
func (s *System) ConnectUnixSocket(sock socket.Socket, path string) (socket.Socket, error) {
	if s.closed.Load() {
		return nil, ErrSystemClosed
	}
	ub, ok := s.backend.(socket.UnixBackend)
	if !ok {
		err := socket.Unsupported("unix sockets")
		s.reporter.LogConnect(s.Kind(), false, 0, err)
		return nil, err
	}
	start := time.Now()
	conn, err := ub.ConnectUnix(context.Background(), sock, path)
	s.reporter.LogConnect(s.Kind(), false, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// CreateSocket 返回未连接的句柄
func (s *System) CreateSocket() socket.Socket {
	return s.backend.CreateSocket()
}

// ============================================================================
//                              子系统
// ============================================================================

// SubSystem 返回命名子系统
//
// 后端不支持子系统，或返回自身时，结果就是 s。
func (s *System) SubSystem(name string) *System {
	sb, ok := s.backend.(socket.SubSystemBackend)
	if !ok {
		return s
	}
	backend := sb.SubSystem(name)
	if backend == nil || backend == s.backend {
		return s
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return s
	}
	if sub, ok := s.subs[name]; ok && sub.backend == backend {
		return sub
	}
	sub := s.derive(backend)
	s.subs[name] = sub
	logger.Debug("子系统已创建", "name", name, "backend", backend.Kind().String())
	return sub
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭所有打开的监听 socket、子系统和后端
func (s *System) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	servers := make([]*trackedServer, 0, len(s.servers))
	for ts := range s.servers {
		servers = append(servers, ts)
	}
	subs := make([]*System, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	var err error
	for _, ts := range servers {
		err = multierr.Append(err, ts.Close())
	}
	// 子系统的监听由各自跟踪，须先于父后端关闭
	for _, sub := range subs {
		err = multierr.Append(err, sub.Close())
	}
	if c, ok := s.backend.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	if err != nil {
		logger.Warn("关闭 socket 系统时出错", "backend", s.Kind().String(), "err", err)
		return fmt.Errorf("close %s: %w", s, err)
	}
	logger.Debug("socket 系统已关闭", "backend", s.Kind().String(), "servers", len(servers))
	return nil
}

// ============================================================================
//                              监听跟踪
// ============================================================================

// trackedServer 关闭时从 System 注销的监听 socket
type trackedServer struct {
	socket.ServerSocket
	sys  *System
	once sync.Once
}

func (s *System) track(ss socket.ServerSocket) socket.ServerSocket {
	ts := &trackedServer{ServerSocket: ss, sys: s}
	s.mu.Lock()
	s.servers[ts] = struct{}{}
	s.mu.Unlock()
	return ts
}

// Close 关闭监听并注销
func (t *trackedServer) Close() error {
	var err error
	t.once.Do(func() {
		err = t.ServerSocket.Close()
		t.sys.mu.Lock()
		delete(t.sys.servers, t)
		t.sys.mu.Unlock()
		t.sys.reporter.LogListenClosed(t.sys.Kind())
	})
	return err
}
