package mem

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/handle"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys/mem")

// 端口分配起点
const firstEphemeralPort = 40000

var (
	// ErrConnectionRefused 目标端口没有监听者
	ErrConnectionRefused = errors.New("mem: connection refused")

	// ErrAddressInUse 端口已被占用
	ErrAddressInUse = errors.New("mem: address already in use")
)

// Op 规范调用类型
type Op string

const (
	OpListen  Op = "listen"
	OpConnect Op = "connect"
	OpCreate  Op = "create"
)

// Call 一次规范调用的记录
type Call struct {
	Op Op

	// 监听参数
	IP      net.IP
	Port    int
	Backlog int
	Native  bool

	// 连接参数
	Request socket.ConnectRequest
}

// Backend 内存后端
type Backend struct {
	mu        sync.Mutex
	calls     []Call
	listeners map[int]*listener
	nextPort  int

	native     bool
	connectErr error
}

var _ socket.Backend = (*Backend)(nil)

// Option 选项函数
type Option func(*Backend)

// WithNative 声明后端为原生实现
func WithNative(enabled bool) Option {
	return func(b *Backend) { b.native = enabled }
}

// WithConnectError 让所有连接返回指定错误
func WithConnectError(err error) Option {
	return func(b *Backend) { b.connectErr = err }
}

// New 创建内存后端
func New(opts ...Option) *Backend {
	b := &Backend{
		listeners: make(map[int]*listener),
		nextPort:  firstEphemeralPort,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Kind 返回 KindTest
func (b *Backend) Kind() socket.Kind { return socket.KindTest }

// IsNative 返回 WithNative 设置的值
func (b *Backend) IsNative() bool { return b.native }

// Calls 返回已记录调用的副本
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// LastCall 返回最后一次调用
func (b *Backend) LastCall() (Call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return Call{}, false
	}
	return b.calls[len(b.calls)-1], true
}

// Reset 清空调用记录
func (b *Backend) Reset() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

func (b *Backend) record(c Call) {
	b.mu.Lock()
	b.calls = append(b.calls, c)
	b.mu.Unlock()
}

// CreateSocket 返回未连接的句柄
func (b *Backend) CreateSocket() socket.Socket {
	b.record(Call{Op: OpCreate})
	return handle.New()
}

// OpenServerSocket 在内存端口上登记监听者
func (b *Backend) OpenServerSocket(ip net.IP, port, backlog int, native bool) (socket.ServerSocket, error) {
	b.record(Call{Op: OpListen, IP: ip, Port: port, Backlog: backlog, Native: native})

	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", socket.ErrInvalidPort, port)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if port == 0 {
		for {
			port = b.nextPort
			b.nextPort++
			if _, used := b.listeners[port]; !used {
				break
			}
		}
	} else if _, used := b.listeners[port]; used {
		return nil, fmt.Errorf("%w: %d", ErrAddressInUse, port)
	}

	bindIP := ip
	if bindIP == nil {
		bindIP = net.IPv6unspecified
	}
	p := port
	l := newListener(&net.TCPAddr{IP: bindIP, Port: port}, backlog, func() {
		b.mu.Lock()
		delete(b.listeners, p)
		b.mu.Unlock()
	})
	b.listeners[port] = l

	logger.Debug("内存监听已登记", "port", port, "backlog", backlog)
	return handle.NewListener(l, backlog, native && b.native), nil
}

// Connect 通过 net.Pipe 连接到目标端口的监听者
//
// 只按端口匹配，忽略远端 IP。
func (b *Backend) Connect(ctx context.Context, req socket.ConnectRequest) (socket.Socket, error) {
	b.record(Call{Op: OpConnect, Request: req})

	if err := req.Validate(); err != nil {
		return nil, err
	}
	h, err := handle.Claim(req.Socket)
	if err != nil {
		return nil, err
	}
	if b.connectErr != nil {
		h.Fail()
		return nil, b.connectErr
	}

	b.mu.Lock()
	l := b.listeners[req.Remote.Port]
	b.mu.Unlock()
	if l == nil {
		h.Fail()
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, req.Remote)
	}

	if req.HasTimeout() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	local := req.Local
	if local == nil {
		local = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
	}
	client, server := net.Pipe()
	clientConn := &pipeConn{Conn: client, local: local, remote: req.Remote, secure: req.TLS}
	serverConn := &pipeConn{Conn: server, local: req.Remote, remote: local, secure: req.TLS}

	select {
	case l.pending <- serverConn:
		// select 在 done 同时就绪时可能选中发送
		if l.closed.Load() {
			client.Close()
			server.Close()
			h.Fail()
			return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, req.Remote)
		}
	case <-l.done:
		client.Close()
		server.Close()
		h.Fail()
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, req.Remote)
	case <-ctx.Done():
		client.Close()
		server.Close()
		h.Fail()
		return nil, fmt.Errorf("mem: connect %s: %w", req.Remote, ctx.Err())
	}

	if err := h.Complete(clientConn); err != nil {
		return nil, err
	}
	return h, nil
}

// ============================================================================
//                              构建器变体
// ============================================================================

// BuilderBackend 支持连接构建器的内存后端
type BuilderBackend struct {
	*Backend
}

var _ socket.BuilderBackend = (*BuilderBackend)(nil)

// NewWithBuilder 创建支持连接构建器的内存后端
func NewWithBuilder(opts ...Option) *BuilderBackend {
	return &BuilderBackend{Backend: New(opts...)}
}

// ValidateRequest 校验构建器请求
func (b *BuilderBackend) ValidateRequest(req socket.ConnectRequest) error {
	return req.Validate()
}
