package tcp

import (
	"context"
	"fmt"
	"net"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/handle"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// ConnectUnix 连接 Unix 域 socket
func (b *Backend) ConnectUnix(ctx context.Context, s socket.Socket, path string) (socket.Socket, error) {
	if b.closed.Load() {
		return nil, ErrBackendClosed
	}
	h, err := handle.Claim(s)
	if err != nil {
		return nil, err
	}

	if b.opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.DialTimeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		h.Fail()
		return nil, fmt.Errorf("连接 unix socket %s 失败: %w", path, err)
	}
	if err := h.Complete(conn); err != nil {
		return nil, err
	}
	return h, nil
}

// OpenUnixServerSocket 在 path 上监听 Unix 域 socket
func (b *Backend) OpenUnixServerSocket(path string) (socket.ServerSocket, error) {
	if b.closed.Load() {
		return nil, ErrBackendClosed
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "unix", path)
	if err != nil {
		return nil, fmt.Errorf("监听 unix socket %s 失败: %w", path, err)
	}
	return handle.NewListener(ln, socket.DefaultBacklog, false), nil
}
