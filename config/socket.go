package config

import (
	"fmt"
	"time"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// SocketConfig socket 后端配置
type SocketConfig struct {
	// Backend 后端名称: "standard" | "native" | "test"
	// 默认值: "standard"
	Backend string `json:"backend"`

	// Backlog 便捷监听方法使用的积压队列长度
	// 默认值: 100
	Backlog int `json:"backlog"`

	// AddressTTL 本地地址缓存有效期
	// 默认值: 2m
	AddressTTL Duration `json:"address_ttl"`

	// DialTimeout 请求未指定超时时的连接超时，0 表示不限制
	// 默认值: 0
	DialTimeout Duration `json:"dial_timeout"`

	// TestMode 地址缓存永不过期，进程内共享
	TestMode bool `json:"test_mode"`

	// HardwareTestMode 硬件标识返回固定测试值
	HardwareTestMode bool `json:"hardware_test_mode"`

	// TLSProtocols TLS 连接默认允许的协议
	// 默认值: ["TLSv1.2", "TLSv1.3"]
	TLSProtocols []string `json:"tls_protocols"`

	// ReusePort 原生后端监听时设置 SO_REUSEPORT
	ReusePort bool `json:"reuse_port"`

	// SubSystemCacheSize 原生后端命名子系统缓存容量
	// 默认值: 32
	SubSystemCacheSize int `json:"subsystem_cache_size"`

	// WatchInterval 网络变化轮询间隔，检测到变化时立即作废地址缓存
	// 默认值: 0（不轮询，仅依赖 TTL）
	WatchInterval Duration `json:"watch_interval"`
}

// DefaultSocketConfig 返回默认 socket 配置
func DefaultSocketConfig() SocketConfig {
	return SocketConfig{
		Backend:            socket.KindStandard.String(),
		Backlog:            socket.DefaultBacklog,
		AddressTTL:         Duration(2 * time.Minute),
		TLSProtocols:       []string{"TLSv1.2", "TLSv1.3"},
		SubSystemCacheSize: 32,
	}
}

// Validate 验证 socket 配置
func (c SocketConfig) Validate() error {
	if _, err := socket.ParseKind(c.Backend); err != nil {
		return fmt.Errorf("socket: %w", err)
	}
	if c.Backlog <= 0 {
		return fmt.Errorf("socket: backlog must be positive, got %d", c.Backlog)
	}
	if c.AddressTTL.Duration() <= 0 {
		return fmt.Errorf("socket: address_ttl must be positive, got %s", c.AddressTTL)
	}
	if c.DialTimeout.Duration() < 0 {
		return fmt.Errorf("socket: dial_timeout cannot be negative")
	}
	for _, p := range c.TLSProtocols {
		if !knownTLSProtocol(p) {
			return fmt.Errorf("socket: unknown TLS protocol %q", p)
		}
	}
	if c.SubSystemCacheSize <= 0 {
		return fmt.Errorf("socket: subsystem_cache_size must be positive, got %d", c.SubSystemCacheSize)
	}
	if c.WatchInterval.Duration() < 0 {
		return fmt.Errorf("socket: watch_interval cannot be negative")
	}
	return nil
}

// Kind 返回解析后的后端类型，无效名称回退到标准后端
func (c SocketConfig) Kind() socket.Kind {
	k, _ := socket.ParseKind(c.Backend)
	return k
}

// WithBackend 设置后端
func (c SocketConfig) WithBackend(name string) SocketConfig {
	c.Backend = name
	return c
}

// WithAddressTTL 设置地址缓存有效期
func (c SocketConfig) WithAddressTTL(ttl time.Duration) SocketConfig {
	c.AddressTTL = Duration(ttl)
	return c
}

// WithTestMode 设置测试模式
func (c SocketConfig) WithTestMode(enabled bool) SocketConfig {
	c.TestMode = enabled
	c.HardwareTestMode = enabled
	return c
}

func knownTLSProtocol(name string) bool {
	switch name {
	case "TLSv1", "TLSv1.0", "TLSv1.1", "TLSv1.2", "TLSv1.3":
		return true
	}
	return false
}
