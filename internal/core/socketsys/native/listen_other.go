//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package native

import (
	"net"
	"syscall"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

func supported() error { return socket.Unsupported("native sockets") }

func listen(net.IP, int, int, bool) (net.Listener, error) {
	return nil, supported()
}

func reuseControl(string, string, syscall.RawConn) error { return nil }
