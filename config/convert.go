package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保持默认值。
//
// 示例 JSON:
//
//	{
//	  "socket": {"backend": "native", "address_ttl": "30s"},
//	  "metrics": {"enabled": false}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为缩进的 JSON
func ToJSON(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromJSON(data)
}

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - "standard": 标准后端（默认）
//   - "server": 原生后端，启用 SO_REUSEPORT，轮询网络变化
//   - "test": 内存后端，测试模式
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case "", "standard":
		cfg.Socket.Backend = "standard"
		return nil
	case "server":
		cfg.Socket.Backend = "native"
		cfg.Socket.ReusePort = true
		cfg.Socket.DialTimeout = Duration(30 * time.Second)
		cfg.Socket.WatchInterval = Duration(10 * time.Second)
		return nil
	case "test":
		cfg.Socket.Backend = "test"
		cfg.Socket = cfg.Socket.WithTestMode(true)
		cfg.Metrics.Enabled = false
		return nil
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
}

// CloneConfig 克隆配置
func CloneConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cloned := *cfg
	cloned.Socket.TLSProtocols = append([]string(nil), cfg.Socket.TLSProtocols...)
	return &cloned
}
