package mem

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// pipeConn 带 TCP 地址的管道连接
type pipeConn struct {
	net.Conn
	local  net.Addr
	remote net.Addr
	secure bool
}

func (c *pipeConn) LocalAddr() net.Addr  { return c.local }
func (c *pipeConn) RemoteAddr() net.Addr { return c.remote }

// Secure 模拟 TLS 连接
func (c *pipeConn) Secure() bool { return c.secure }

// listener 内存监听者，实现 net.Listener
type listener struct {
	addr    *net.TCPAddr
	pending chan net.Conn

	closeOnce sync.Once
	done      chan struct{}
	closed    atomic.Bool
	onClose   func()
}

func newListener(addr *net.TCPAddr, backlog int, onClose func()) *listener {
	if backlog <= 0 {
		backlog = socket.DefaultBacklog
	}
	return &listener{
		addr:    addr,
		pending: make(chan net.Conn, backlog),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

func (l *listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.pending:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *listener) Close() error {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
		if l.onClose != nil {
			l.onClose()
		}
	})
	return nil
}

func (l *listener) Addr() net.Addr { return l.addr }
