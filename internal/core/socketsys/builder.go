package socketsys

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// ConnectBuilder 流式连接构建器
//
// 设置方法返回构建器本身；Get 执行一次规范连接，之后构建器不可再用。
//
//	b, err := sys.NewConnectBuilder()
//	if err != nil {
//	    return err // 后端不支持构建器
//	}
//	s, err := b.Address(remote).Timeout(5 * time.Second).TLS(true).Get()
type ConnectBuilder struct {
	sys       *System
	validator socket.BuilderBackend
	req       socket.ConnectRequest
	used      atomic.Bool
}

// Socket 设置可复用的句柄
func (b *ConnectBuilder) Socket(s socket.Socket) *ConnectBuilder {
	b.req.Socket = s
	return b
}

// Address 设置远端地址
func (b *ConnectBuilder) Address(addr *net.TCPAddr) *ConnectBuilder {
	b.req.Remote = addr
	return b
}

// LocalAddress 设置本地绑定地址
func (b *ConnectBuilder) LocalAddress(addr *net.TCPAddr) *ConnectBuilder {
	b.req.Local = addr
	return b
}

// Timeout 设置连接超时
func (b *ConnectBuilder) Timeout(d time.Duration) *ConnectBuilder {
	b.req.Timeout = d
	return b
}

// TLS 设置是否使用 TLS
func (b *ConnectBuilder) TLS(enabled bool) *ConnectBuilder {
	b.req.TLS = enabled
	return b
}

// TLSProtocols 限定 TLS 协议版本
func (b *ConnectBuilder) TLSProtocols(names ...string) *ConnectBuilder {
	b.req.TLSProtocols = append([]string(nil), names...)
	return b
}

// Request 返回当前累积的请求
func (b *ConnectBuilder) Request() socket.ConnectRequest {
	return b.req
}

// Get 执行连接
//
// 第二次调用返回 socket.ErrBuilderConsumed。
func (b *ConnectBuilder) Get() (socket.Socket, error) {
	return b.GetContext(context.Background())
}

// GetContext 与 Get 相同，但使用调用方提供的 context
func (b *ConnectBuilder) GetContext(ctx context.Context) (socket.Socket, error) {
	if !b.used.CompareAndSwap(false, true) {
		return nil, socket.ErrBuilderConsumed
	}
	req := b.req
	if err := b.validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	return b.sys.connect(ctx, req)
}
