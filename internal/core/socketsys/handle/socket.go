// Package handle 提供各后端共用的 socket 句柄实现
//
// Socket 跟踪单个连接的状态转换，Listener 包装 net.Listener 并记录
// 积压队列长度和是否为原生实现。后端只负责建立底层连接，
// 状态迁移统一在这里完成。
package handle

import (
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// Socket 连接句柄
type Socket struct {
	id    string
	state atomic.Int32

	mu    sync.Mutex
	conn  net.Conn
	isTLS bool
}

var _ socket.Socket = (*Socket)(nil)

// New 创建未连接的句柄
func New() *Socket {
	return &Socket{id: uuid.NewString()}
}

// Accepted 包装入站连接，句柄直接处于 connected 状态
func Accepted(conn net.Conn) *Socket {
	s := New()
	s.attach(conn)
	return s
}

// Claim 为一次连接操作取得句柄
//
// s 为 nil 时新建句柄。只有 unopened 或 failed 状态的本包句柄可以复用，
// 成功后句柄进入 connecting 状态。
func Claim(s socket.Socket) (*Socket, error) {
	if s == nil {
		h := New()
		h.state.Store(int32(socket.StateConnecting))
		return h, nil
	}
	h, ok := s.(*Socket)
	if !ok {
		return nil, socket.Unsupported("foreign socket handle")
	}
	if err := h.begin(); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Socket) begin() error {
	for {
		cur := socket.State(s.state.Load())
		switch cur {
		case socket.StateUnopened, socket.StateFailed:
		case socket.StateClosed:
			return socket.ErrSocketClosed
		default:
			return socket.ErrSocketInUse
		}
		if s.state.CompareAndSwap(int32(cur), int32(socket.StateConnecting)) {
			return nil
		}
	}
}

// Complete 连接建立成功
//
// 若句柄在连接过程中被关闭，关闭新连接并返回 ErrSocketClosed。
func (s *Socket) Complete(conn net.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CompareAndSwap(int32(socket.StateConnecting), int32(socket.StateConnected)) {
		_ = conn.Close()
		return socket.ErrSocketClosed
	}
	s.conn = conn
	s.isTLS = isSecure(conn)
	return nil
}

// Fail 连接失败，句柄回到可复用状态
func (s *Socket) Fail() {
	s.state.CompareAndSwap(int32(socket.StateConnecting), int32(socket.StateFailed))
}

func (s *Socket) attach(conn net.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.isTLS = isSecure(conn)
	s.mu.Unlock()
	s.state.Store(int32(socket.StateConnected))
}

// SecureConn 由非 crypto/tls 实现的安全连接声明自身已加密
type SecureConn interface {
	Secure() bool
}

func isSecure(conn net.Conn) bool {
	switch c := conn.(type) {
	case *tls.Conn:
		return true
	case SecureConn:
		return c.Secure()
	default:
		return false
	}
}

// ID 返回句柄标识
func (s *Socket) ID() string { return s.id }

// State 返回当前状态
func (s *Socket) State() socket.State { return socket.State(s.state.Load()) }

// Conn 返回底层连接
func (s *Socket) Conn() net.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// LocalAddr 返回本地地址
func (s *Socket) LocalAddr() net.Addr {
	if c := s.Conn(); c != nil {
		return c.LocalAddr()
	}
	return nil
}

// RemoteAddr 返回远端地址
func (s *Socket) RemoteAddr() net.Addr {
	if c := s.Conn(); c != nil {
		return c.RemoteAddr()
	}
	return nil
}

// IsTLS 是否为 TLS 连接
func (s *Socket) IsTLS() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isTLS
}

// Close 关闭句柄，重复调用是安全的
func (s *Socket) Close() error {
	if socket.State(s.state.Swap(int32(socket.StateClosed))) == socket.StateClosed {
		return nil
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}
