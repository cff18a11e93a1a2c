package mocks

import (
	"context"
	"net"
	"sync"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// ============================================================================
// MockBackend
// ============================================================================

// MockBackend 模拟 socket.Backend
type MockBackend struct {
	KindValue socket.Kind

	// 可覆盖的方法
	OpenServerSocketFunc func(ip net.IP, port, backlog int, native bool) (socket.ServerSocket, error)
	ConnectFunc          func(ctx context.Context, req socket.ConnectRequest) (socket.Socket, error)
	CreateSocketFunc     func() socket.Socket

	// 调用记录
	mu           sync.Mutex
	ListenCalls  []ListenCall
	ConnectCalls []socket.ConnectRequest
}

// ListenCall 记录 OpenServerSocket 调用
type ListenCall struct {
	IP      net.IP
	Port    int
	Backlog int
	Native  bool
}

var _ socket.Backend = (*MockBackend)(nil)

// NewMockBackend 创建带有默认值的 MockBackend
func NewMockBackend() *MockBackend {
	return &MockBackend{KindValue: socket.KindTest}
}

// Kind 返回后端类型
func (m *MockBackend) Kind() socket.Kind { return m.KindValue }

// OpenServerSocket 打开监听 socket
func (m *MockBackend) OpenServerSocket(ip net.IP, port, backlog int, native bool) (socket.ServerSocket, error) {
	m.mu.Lock()
	m.ListenCalls = append(m.ListenCalls, ListenCall{IP: ip, Port: port, Backlog: backlog, Native: native})
	m.mu.Unlock()

	if m.OpenServerSocketFunc != nil {
		return m.OpenServerSocketFunc(ip, port, backlog, native)
	}
	return &MockServerSocket{
		AddrValue:    &net.TCPAddr{IP: ip, Port: port},
		BacklogValue: backlog,
	}, nil
}

// Connect 建立连接
func (m *MockBackend) Connect(ctx context.Context, req socket.ConnectRequest) (socket.Socket, error) {
	m.mu.Lock()
	m.ConnectCalls = append(m.ConnectCalls, req)
	m.mu.Unlock()

	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx, req)
	}
	return &MockSocket{
		IDValue:     "mock",
		StateValue:  socket.StateConnected,
		RemoteValue: req.Remote,
		TLSValue:    req.TLS,
	}, nil
}

// CreateSocket 创建未连接句柄
func (m *MockBackend) CreateSocket() socket.Socket {
	if m.CreateSocketFunc != nil {
		return m.CreateSocketFunc()
	}
	return &MockSocket{IDValue: "mock", StateValue: socket.StateUnopened}
}

// LastConnect 返回最后一次 Connect 请求
func (m *MockBackend) LastConnect() (socket.ConnectRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ConnectCalls) == 0 {
		return socket.ConnectRequest{}, false
	}
	return m.ConnectCalls[len(m.ConnectCalls)-1], true
}

// ============================================================================
// MockServerSocket
// ============================================================================

// MockServerSocket 模拟 socket.ServerSocket
type MockServerSocket struct {
	AddrValue    net.Addr
	BacklogValue int
	NativeValue  bool
	Closed       bool

	AcceptFunc func() (socket.Socket, error)
	CloseFunc  func() error
}

// Addr 返回监听地址
func (m *MockServerSocket) Addr() net.Addr { return m.AddrValue }

// Backlog 返回积压队列长度
func (m *MockServerSocket) Backlog() int { return m.BacklogValue }

// IsNative 是否原生
func (m *MockServerSocket) IsNative() bool { return m.NativeValue }

// Accept 接受连接
func (m *MockServerSocket) Accept() (socket.Socket, error) {
	if m.AcceptFunc != nil {
		return m.AcceptFunc()
	}
	if m.Closed {
		return nil, socket.ErrSocketClosed
	}
	return &MockSocket{IDValue: "accepted", StateValue: socket.StateConnected}, nil
}

// Close 关闭监听
func (m *MockServerSocket) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	m.Closed = true
	return nil
}

// ============================================================================
// MockSocket
// ============================================================================

// MockSocket 模拟 socket.Socket
type MockSocket struct {
	IDValue     string
	StateValue  socket.State
	ConnValue   net.Conn
	LocalValue  net.Addr
	RemoteValue net.Addr
	TLSValue    bool

	CloseFunc func() error
}

// ID 返回标识
func (m *MockSocket) ID() string { return m.IDValue }

// State 返回状态
func (m *MockSocket) State() socket.State { return m.StateValue }

// Conn 返回底层连接
func (m *MockSocket) Conn() net.Conn { return m.ConnValue }

// LocalAddr 返回本地地址
func (m *MockSocket) LocalAddr() net.Addr { return m.LocalValue }

// RemoteAddr 返回远端地址
func (m *MockSocket) RemoteAddr() net.Addr { return m.RemoteValue }

// IsTLS 是否为 TLS
func (m *MockSocket) IsTLS() bool { return m.TLSValue }

// Close 关闭
func (m *MockSocket) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	m.StateValue = socket.StateClosed
	return nil
}
