package socketsys

import (
	"context"
	"fmt"
	"net"
)

// resolveListenIP 解析监听地址，空字符串表示通配
func resolveListenIP(ctx context.Context, address string) (net.IP, error) {
	if address == "" {
		return nil, nil
	}
	return resolveIP(ctx, address)
}

// resolveConnectIP 解析连接地址，空字符串表示本机回环
func resolveConnectIP(ctx context.Context, address string) (net.IP, error) {
	if address == "" {
		return net.IPv4(127, 0, 0, 1), nil
	}
	return resolveIP(ctx, address)
}

// resolveIP 解析 IP 字面量或主机名，优先返回 IPv4
func resolveIP(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownHost, host, err)
	}
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP, nil
		}
	}
	if len(addrs) > 0 {
		return addrs[0].IP, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownHost, host)
}
