package config

import "fmt"

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否注册 Prometheus 指标
	// 默认值: true
	Enabled bool `json:"enabled"`

	// Namespace 指标名前缀
	// 默认值: "socketsys"
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "socketsys",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Enabled && c.Namespace == "" {
		return fmt.Errorf("metrics: namespace cannot be empty when enabled")
	}
	return nil
}
