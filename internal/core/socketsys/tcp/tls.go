package tcp

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
)

// protocolVersions TLS 协议名称到版本号的映射
var protocolVersions = map[string]uint16{
	"TLSv1":   tls.VersionTLS10,
	"TLSv1.0": tls.VersionTLS10,
	"TLSv1.1": tls.VersionTLS11,
	"TLSv1.2": tls.VersionTLS12,
	"TLSv1.3": tls.VersionTLS13,
}

// DefaultProtocols 默认允许的 TLS 协议
var DefaultProtocols = []string{"TLSv1.2", "TLSv1.3"}

// ParseProtocols 将协议名称列表解析为版本范围
func ParseProtocols(names []string) (minVersion, maxVersion uint16, err error) {
	for _, name := range names {
		v, ok := protocolVersions[strings.TrimSpace(name)]
		if !ok {
			return 0, 0, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
		}
		if minVersion == 0 || v < minVersion {
			minVersion = v
		}
		if v > maxVersion {
			maxVersion = v
		}
	}
	return minVersion, maxVersion, nil
}

// ConfigBuilder TLS 客户端配置构建器
type ConfigBuilder struct {
	base       *tls.Config
	protocols  []string
	serverName string
}

// NewConfigBuilder 创建配置构建器，base 可以为 nil
func NewConfigBuilder(base *tls.Config) *ConfigBuilder {
	return &ConfigBuilder{base: base, protocols: DefaultProtocols}
}

// WithProtocols 限定允许的协议版本，空列表保持默认值
func (b *ConfigBuilder) WithProtocols(names []string) *ConfigBuilder {
	if len(names) > 0 {
		b.protocols = names
	}
	return b
}

// WithServerName 设置 SNI 与证书校验使用的主机名
func (b *ConfigBuilder) WithServerName(name string) *ConfigBuilder {
	b.serverName = name
	return b
}

// Build 生成 tls.Config
func (b *ConfigBuilder) Build() (*tls.Config, error) {
	minVersion, maxVersion, err := ParseProtocols(b.protocols)
	if err != nil {
		return nil, err
	}

	var cfg *tls.Config
	if b.base != nil {
		cfg = b.base.Clone()
	} else {
		cfg = &tls.Config{}
	}
	cfg.MinVersion = minVersion
	cfg.MaxVersion = maxVersion
	if cfg.ServerName == "" {
		cfg.ServerName = b.serverName
	}
	return cfg, nil
}

// serverNameFor 从远端地址推导 SNI，IP 地址不发送 SNI 但仍用于校验
func serverNameFor(addr *net.TCPAddr) string {
	if addr == nil || addr.IP == nil {
		return ""
	}
	return addr.IP.String()
}
