//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package native

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func supported() error { return nil }

// listen 通过系统调用创建监听 socket
func listen(ip net.IP, port, backlog int, reusePort bool) (net.Listener, error) {
	family, sa, err := sockaddr(ip, port)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil && family == unix.AF_INET6 && ip == nil {
		// 主机未启用 IPv6 时退回 IPv4 通配地址
		family, sa = unix.AF_INET, &unix.SockaddrInet4{Port: port}
		fd, err = unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	}
	if err != nil {
		return nil, fmt.Errorf("创建 socket 失败: %w", err)
	}
	unix.CloseOnExec(fd)

	if err := configure(fd, family, ip == nil, reusePort); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("绑定 %s 失败: %w", net.JoinHostPort(displayHost(ip), fmt.Sprint(port)), err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen(backlog=%d) 失败: %w", backlog, err)
	}

	// FileListener 复制描述符，原文件随后关闭
	f := os.NewFile(uintptr(fd), "socketsys-native-listener")
	defer f.Close()
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("接管监听 socket 失败: %w", err)
	}
	return ln, nil
}

func configure(fd, family int, wildcard, reusePort bool) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("set SO_REUSEADDR: %w", err)
	}
	if reusePort {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			logger.Warn("设置 SO_REUSEPORT 失败（某些系统不支持）", "err", err)
		}
	}
	if family == unix.AF_INET6 && wildcard {
		if err := unix.SetsockoptInt(fd, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0); err != nil {
			return fmt.Errorf("clear IPV6_V6ONLY: %w", err)
		}
	}
	return nil
}

func sockaddr(ip net.IP, port int) (int, unix.Sockaddr, error) {
	if port < 0 || port > 65535 {
		return 0, nil, fmt.Errorf("invalid port %d", port)
	}
	if ip == nil {
		return unix.AF_INET6, &unix.SockaddrInet6{Port: port}, nil
	}
	if ip4 := ip.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa, nil
	}
	if ip16 := ip.To16(); ip16 != nil {
		sa := &unix.SockaddrInet6{Port: port}
		copy(sa.Addr[:], ip16)
		return unix.AF_INET6, sa, nil
	}
	return 0, nil, fmt.Errorf("invalid IP address %v", ip)
}

func displayHost(ip net.IP) string {
	if ip == nil {
		return "::"
	}
	return ip.String()
}

// reuseControl 拨号前设置 SO_REUSEADDR
func reuseControl(_, _ string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			opErr = fmt.Errorf("set SO_REUSEADDR: %w", err)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}
