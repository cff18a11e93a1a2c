package localaddr

import (
	"net"
	"os"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/netif"
)

// TestHardwareAddress 测试模式下的固定硬件地址
var TestHardwareAddress = []byte{10, 0, 0, 0, 0, 10}

// HostLookup 解析本机主机地址
type HostLookup func() ([]net.IP, error)

// Resolver 主机硬件标识解析器
type Resolver struct {
	provider   netif.Provider
	testMode   bool
	lookupHost HostLookup
}

// ResolverOption 解析器选项
type ResolverOption func(*Resolver)

// WithHardwareTestMode 测试模式下总是返回 TestHardwareAddress
func WithHardwareTestMode(enabled bool) ResolverOption {
	return func(r *Resolver) { r.testMode = enabled }
}

// WithHostLookup 替换本机地址解析函数
func WithHostLookup(fn HostLookup) ResolverOption {
	return func(r *Resolver) {
		if fn != nil {
			r.lookupHost = fn
		}
	}
}

// NewResolver 创建硬件标识解析器
func NewResolver(p netif.Provider, opts ...ResolverOption) *Resolver {
	if p == nil {
		p = netif.NewSystemProvider()
	}
	r := &Resolver{
		provider:   p,
		lookupHost: lookupLocalHost,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HardwareAddress 返回主机的稳定字节标识
//
// 依次尝试：测试哨兵值 → 第一个带硬件地址的非回环接口 → 本机主机地址字节 → 空。
// 从不返回错误。
func (r *Resolver) HardwareAddress() []byte {
	if r.testMode {
		return append([]byte(nil), TestHardwareAddress...)
	}

	descs, err := r.provider.Interfaces()
	if err != nil {
		logger.Debug("枚举网络接口失败", "err", err)
	}
	for _, d := range descs {
		if !d.Loopback && d.HasHardwareAddr() {
			return append([]byte(nil), d.HardwareAddr...)
		}
	}

	ips, err := r.lookupHost()
	if err != nil {
		logger.Debug("解析本机地址失败", "err", err)
		return []byte{}
	}
	if ip := preferIPv4(ips); ip != nil {
		return append([]byte(nil), normalize(ip)...)
	}

	logger.Debug("无可用硬件标识")
	return []byte{}
}

// lookupLocalHost 通过主机名解析本机地址
func lookupLocalHost() ([]net.IP, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	return net.LookupIP(host)
}

func preferIPv4(ips []net.IP) net.IP {
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip
		}
	}
	if len(ips) > 0 {
		return ips[0]
	}
	return nil
}
