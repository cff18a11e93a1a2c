package socketsys

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-socketsys/internal/core/metrics"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/localaddr"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/netif"
)

// options System 构造选项
type options struct {
	provider     netif.Provider
	cache        *localaddr.Cache
	resolver     *localaddr.Resolver
	testMode     *bool
	hardwareTest *bool
	ttl          time.Duration
	clock        clock.Clock
	reporter     metrics.Reporter
	backlog      int
}

// Option System 选项
type Option func(*options)

// WithInterfaceProvider 替换网络接口来源
func WithInterfaceProvider(p netif.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithAddressCache 使用现成的地址缓存
func WithAddressCache(c *localaddr.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithHardwareResolver 使用现成的硬件标识解析器
func WithHardwareResolver(r *localaddr.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithTestMode 显式设置测试模式，覆盖环境探测
func WithTestMode(enabled bool) Option {
	return func(o *options) { o.testMode = &enabled }
}

// WithHardwareTestMode 显式设置硬件标识测试模式
func WithHardwareTestMode(enabled bool) Option {
	return func(o *options) { o.hardwareTest = &enabled }
}

// WithAddressTTL 设置地址缓存有效期
func WithAddressTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock 设置地址缓存时间源
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithReporter 设置指标记录器
func WithReporter(r metrics.Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithDefaultBacklog 设置便捷监听方法使用的 backlog
func WithDefaultBacklog(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.backlog = n
		}
	}
}

func (o *options) isTestMode() bool {
	if o.testMode != nil {
		return *o.testMode
	}
	return localaddr.DetectTestMode()
}

func (o *options) isHardwareTestMode() bool {
	if o.hardwareTest != nil {
		return *o.hardwareTest
	}
	if o.testMode != nil && *o.testMode {
		return true
	}
	return localaddr.DetectHardwareTestMode()
}

// buildCache 按选项创建地址缓存
//
// 测试模式且未指定接口来源时使用进程共享缓存。
func (o *options) buildCache() *localaddr.Cache {
	if o.cache != nil {
		return o.cache
	}
	testMode := o.isTestMode()
	if testMode && o.provider == nil && o.clock == nil && o.ttl == 0 {
		return localaddr.Shared()
	}

	opts := []localaddr.Option{
		localaddr.WithTestMode(testMode),
		localaddr.WithTTL(o.ttl),
		localaddr.WithRefreshHook(o.reporter.LogAddressRefresh),
	}
	if o.clock != nil {
		opts = append(opts, localaddr.WithClock(o.clock))
	}
	return localaddr.NewCache(o.provider, opts...)
}

func (o *options) buildResolver() *localaddr.Resolver {
	if o.resolver != nil {
		return o.resolver
	}
	return localaddr.NewResolver(o.provider, localaddr.WithHardwareTestMode(o.isHardwareTestMode()))
}
