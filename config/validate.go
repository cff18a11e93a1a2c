package config

import "errors"

// ValidateAll 验证整个配置的有效性
//
// Config.Validate 的别名，对 nil 返回错误。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 修复常见问题后验证配置
//
// 可修复的问题：
//   - backlog 非正数 -> 100
//   - 地址缓存有效期非正数 -> 2m
//   - 连接超时为负 -> 0（不限制）
//   - TLS 协议为空 -> 默认协议
//   - 子系统缓存容量非正数 -> 默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	def := DefaultSocketConfig()
	if c.Socket.Backlog <= 0 {
		c.Socket.Backlog = def.Backlog
	}
	if c.Socket.AddressTTL <= 0 {
		c.Socket.AddressTTL = def.AddressTTL
	}
	if c.Socket.DialTimeout < 0 {
		c.Socket.DialTimeout = 0
	}
	if len(c.Socket.TLSProtocols) == 0 {
		c.Socket.TLSProtocols = def.TLSProtocols
	}
	if c.Socket.SubSystemCacheSize <= 0 {
		c.Socket.SubSystemCacheSize = def.SubSystemCacheSize
	}
	if c.Socket.WatchInterval < 0 {
		c.Socket.WatchInterval = 0
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsConfig().Namespace
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig().Level
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
