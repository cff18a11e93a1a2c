package metrics

import (
	"time"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// Reporter socket 系统的指标记录接口
type Reporter interface {
	// LogListen 记录一次监听操作
	LogListen(kind socket.Kind, err error)

	// LogListenClosed 记录监听 socket 关闭
	LogListenClosed(kind socket.Kind)

	// LogConnect 记录一次连接操作
	LogConnect(kind socket.Kind, tls bool, elapsed time.Duration, err error)

	// LogAddressRefresh 记录一次本地地址枚举
	LogAddressRefresh(count int, err error)
}

// Nop 不记录任何指标
type Nop struct{}

var _ Reporter = Nop{}

func (Nop) LogListen(socket.Kind, error)                       {}
func (Nop) LogListenClosed(socket.Kind)                        {}
func (Nop) LogConnect(socket.Kind, bool, time.Duration, error) {}
func (Nop) LogAddressRefresh(int, error)                       {}

// 结果标签
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultUnsupported = "unsupported"
)

// ResultOf 将错误映射为结果标签
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case socket.IsConfigError(err):
		return ResultUnsupported
	default:
		return ResultError
	}
}
