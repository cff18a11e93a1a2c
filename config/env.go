package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// 环境变量
const (
	EnvBackend    = "SOCKETSYS_BACKEND"
	EnvTest       = "SOCKETSYS_TEST"
	EnvTestMAC    = "SOCKETSYS_TEST_MAC"
	EnvAddressTTL = "SOCKETSYS_ADDRESS_TTL"
	EnvLogLevel   = "SOCKETSYS_LOG_LEVEL"
)

// LookupFunc 环境变量查询函数，签名与 os.LookupEnv 相同
type LookupFunc func(key string) (string, bool)

// ApplyEnv 用进程环境变量覆盖配置
func ApplyEnv(cfg *Config) error {
	return ApplyEnvFrom(cfg, os.LookupEnv)
}

// ApplyEnvFrom 用 lookup 提供的变量覆盖配置
func ApplyEnvFrom(cfg *Config, lookup LookupFunc) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if v, ok := lookup(EnvBackend); ok && v != "" {
		cfg.Socket.Backend = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvTest); ok {
		enabled, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTest, err)
		}
		cfg.Socket.TestMode = enabled
		cfg.Socket.HardwareTestMode = cfg.Socket.HardwareTestMode || enabled
	}
	if v, ok := lookup(EnvTestMAC); ok {
		enabled, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTestMAC, err)
		}
		cfg.Socket.HardwareTestMode = enabled
	}
	if v, ok := lookup(EnvAddressTTL); ok && v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAddressTTL, err)
		}
		cfg.Socket.AddressTTL = d
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// parseBool 空字符串视为 true，便于 SOCKETSYS_TEST= 这种写法
func parseBool(v string) (bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return true, nil
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}
