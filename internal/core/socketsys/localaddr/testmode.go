package localaddr

import (
	"os"
	"strings"
	"testing"
)

// 测试模式环境变量
const (
	// EnvTest 进程级测试标记：无限 TTL + 哨兵硬件地址
	EnvTest = "SOCKETSYS_TEST"

	// EnvTestMAC 仅强制哨兵硬件地址
	EnvTestMAC = "SOCKETSYS_TEST_MAC"
)

// DetectTestMode 检测进程级测试标记
//
// SOCKETSYS_TEST 为真值，或当前进程是 go test 二进制。
func DetectTestMode() bool {
	if truthy(os.Getenv(EnvTest)) {
		return true
	}
	return testing.Testing()
}

// DetectHardwareTestMode 检测是否应返回哨兵硬件地址
func DetectHardwareTestMode() bool {
	return DetectTestMode() || os.Getenv(EnvTestMAC) != ""
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
