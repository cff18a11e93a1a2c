// Package netif 提供主机网络接口枚举
//
// Provider 抽象 net.Interfaces()，返回只读的 Descriptor 快照，
// 便于地址缓存和硬件标识解析在测试中替换为固定数据。
package netif

import (
	"bytes"
	"fmt"
	"net"

	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys/netif")

// Descriptor 网络接口快照
type Descriptor struct {
	// Name 接口名
	Name string

	// Index 系统接口索引
	Index int

	// Loopback 是否为回环接口
	Loopback bool

	// Up 接口是否启用
	Up bool

	// Addrs 接口上的原始 IP 地址
	Addrs []net.IP

	// HardwareAddr 硬件地址，可能为空
	HardwareAddr []byte
}

// HasHardwareAddr 是否带有非零硬件地址
func (d Descriptor) HasHardwareAddr() bool {
	return len(d.HardwareAddr) > 0 && !bytes.Equal(d.HardwareAddr, make([]byte, len(d.HardwareAddr)))
}

// Clone 返回深拷贝
func (d Descriptor) Clone() Descriptor {
	c := d
	c.Addrs = make([]net.IP, len(d.Addrs))
	for i, ip := range d.Addrs {
		c.Addrs[i] = append(net.IP(nil), ip...)
	}
	if d.HardwareAddr != nil {
		c.HardwareAddr = append([]byte(nil), d.HardwareAddr...)
	}
	return c
}

// Provider 网络接口提供者
type Provider interface {
	// Interfaces 按系统枚举顺序返回所有接口
	Interfaces() ([]Descriptor, error)
}

// ProviderFunc 函数适配器
type ProviderFunc func() ([]Descriptor, error)

// Interfaces 实现 Provider
func (f ProviderFunc) Interfaces() ([]Descriptor, error) {
	return f()
}

// ============================================================================
//                              系统实现
// ============================================================================

// SystemProvider 基于 net.Interfaces() 的实现
type SystemProvider struct{}

// NewSystemProvider 创建系统接口提供者
func NewSystemProvider() *SystemProvider {
	return &SystemProvider{}
}

// Interfaces 枚举主机接口
//
// 单个接口的地址读取失败只记录日志并跳过该接口的地址。
func (p *SystemProvider) Interfaces() ([]Descriptor, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}

	out := make([]Descriptor, 0, len(ifaces))
	for _, iface := range ifaces {
		d := Descriptor{
			Name:     iface.Name,
			Index:    iface.Index,
			Loopback: iface.Flags&net.FlagLoopback != 0,
			Up:       iface.Flags&net.FlagUp != 0,
		}
		if len(iface.HardwareAddr) > 0 {
			d.HardwareAddr = append([]byte(nil), iface.HardwareAddr...)
		}

		addrs, err := iface.Addrs()
		if err != nil {
			logger.Debug("获取接口地址失败", "iface", iface.Name, "err", err)
		}
		for _, addr := range addrs {
			if ip := ipFromAddr(addr); ip != nil {
				d.Addrs = append(d.Addrs, ip)
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// ipFromAddr 从网络地址中提取 IP
func ipFromAddr(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	default:
		return nil
	}
}

// ============================================================================
//                              静态实现
// ============================================================================

// Static 返回固定接口列表的 Provider，每次调用返回深拷贝
func Static(descs ...Descriptor) Provider {
	return ProviderFunc(func() ([]Descriptor, error) {
		out := make([]Descriptor, len(descs))
		for i, d := range descs {
			out[i] = d.Clone()
		}
		return out, nil
	})
}

// Flatten 按枚举顺序展开所有接口地址
func Flatten(descs []Descriptor) []net.IP {
	var out []net.IP
	for _, d := range descs {
		out = append(out, d.Addrs...)
	}
	return out
}
