package handle

import (
	"errors"
	"net"
	"sync/atomic"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// Listener 监听 socket
type Listener struct {
	ln      net.Listener
	backlog int
	native  bool
	closed  atomic.Bool
}

var _ socket.ServerSocket = (*Listener)(nil)

// NewListener 包装已监听的 net.Listener
func NewListener(ln net.Listener, backlog int, native bool) *Listener {
	return &Listener{ln: ln, backlog: backlog, native: native}
}

// Addr 返回实际监听地址
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Backlog 返回请求的积压队列长度
func (l *Listener) Backlog() int { return l.backlog }

// IsNative 是否为原生实现
func (l *Listener) IsNative() bool { return l.native }

// Accept 等待下一个入站连接
func (l *Listener) Accept() (socket.Socket, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		if l.closed.Load() || errors.Is(err, net.ErrClosed) {
			return nil, socket.ErrSocketClosed
		}
		return nil, err
	}
	return Accepted(conn), nil
}

// Close 停止监听
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	return l.ln.Close()
}

// Unwrap 返回底层 net.Listener
func (l *Listener) Unwrap() net.Listener { return l.ln }
