package config

import (
	"fmt"

	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别: debug | info | warn | error
	// 默认值: "info"
	Level string `json:"level"`

	// JSON 是否输出 JSON 格式
	JSON bool `json:"json"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info"}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, ok := log.ParseLevel(c.Level); !ok {
		return fmt.Errorf("log: unknown level %q", c.Level)
	}
	return nil
}

// Apply 将配置应用到全局日志
func (c LogConfig) Apply() {
	if lvl, ok := log.ParseLevel(c.Level); ok {
		log.SetLevel(lvl)
	}
	log.SetJSON(c.JSON)
}
