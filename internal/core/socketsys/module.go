package socketsys

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-socketsys/config"
	"github.com/dep2p/go-socketsys/internal/core/metrics"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/mem"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/native"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/netif"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/netwatch"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/tcp"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// Config socket 系统配置
type Config struct {
	// 后端
	Kind               socket.Kind
	ReusePort          bool
	SubSystemCacheSize int

	// 默认值
	Backlog      int
	DialTimeout  time.Duration
	TLSProtocols []string

	// 地址缓存
	AddressTTL       time.Duration
	TestMode         bool
	HardwareTestMode bool

	// 网络变化轮询，0 表示关闭
	WatchInterval time.Duration
}

// NewConfig 创建默认配置
func NewConfig() Config {
	return Config{
		Kind:               socket.KindStandard,
		SubSystemCacheSize: native.DefaultSubSystemCacheSize,
		Backlog:            socket.DefaultBacklog,
		TLSProtocols:       tcp.DefaultProtocols,
		AddressTTL:         2 * time.Minute,
	}
}

// ConfigFromUnified 从统一配置创建 socket 系统配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return NewConfig()
	}
	return Config{
		Kind:               cfg.Socket.Kind(),
		ReusePort:          cfg.Socket.ReusePort,
		SubSystemCacheSize: cfg.Socket.SubSystemCacheSize,
		Backlog:            cfg.Socket.Backlog,
		DialTimeout:        cfg.Socket.DialTimeout.Duration(),
		TLSProtocols:       cfg.Socket.TLSProtocols,
		AddressTTL:         cfg.Socket.AddressTTL.Duration(),
		TestMode:           cfg.Socket.TestMode,
		HardwareTestMode:   cfg.Socket.HardwareTestMode,
		WatchInterval:      cfg.Socket.WatchInterval.Duration(),
	}
}

// NewBackend 按配置创建后端
func NewBackend(cfg Config) (socket.Backend, error) {
	stdOpts := []tcp.Option{tcp.WithDialTimeout(cfg.DialTimeout)}
	if len(cfg.TLSProtocols) > 0 {
		stdOpts = append(stdOpts, tcp.WithTLSProtocols(cfg.TLSProtocols...))
	}

	switch cfg.Kind {
	case socket.KindStandard:
		return tcp.New(stdOpts...), nil
	case socket.KindNative:
		return native.New(
			native.WithReusePort(cfg.ReusePort),
			native.WithSubSystemCacheSize(cfg.SubSystemCacheSize),
			native.WithStandardOptions(stdOpts...),
		)
	case socket.KindTest:
		return mem.NewWithBuilder(), nil
	default:
		return nil, fmt.Errorf("unknown socket backend: %v", cfg.Kind)
	}
}

// Options 将配置转换为 System 选项
func (c Config) Options() []Option {
	opts := []Option{
		WithDefaultBacklog(c.Backlog),
		WithAddressTTL(c.AddressTTL),
	}
	if c.TestMode {
		opts = append(opts, WithTestMode(true))
	}
	if c.HardwareTestMode {
		opts = append(opts, WithHardwareTestMode(true))
	}
	return opts
}

// Params System 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config   `optional:"true"`
	Reporter   metrics.Reporter `optional:"true"`
	Provider   netif.Provider   `optional:"true"`
}

// NewFromParams 从参数创建 System
func NewFromParams(p Params) (*System, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.Options(), WithReporter(p.Reporter))
	if p.Provider != nil {
		opts = append(opts, WithInterfaceProvider(p.Provider))
	}
	return New(backend, opts...), nil
}

// WatcherParams 网络变化监听器依赖参数
type WatcherParams struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
	Provider   netif.Provider `optional:"true"`
	System     *System
}

// NewWatcherFromParams 创建网络变化监听器
//
// 轮询间隔为 0 时返回 nil。检测到变化时作废 System 的地址缓存。
func NewWatcherFromParams(p WatcherParams) *netwatch.Watcher {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if cfg.WatchInterval <= 0 {
		return nil
	}
	sys := p.System
	return netwatch.New(p.Provider, func(ev netwatch.Event) {
		logger.Info("网络变化，作废地址缓存",
			"system", sys.String(),
			"added", len(ev.Added),
			"removed", len(ev.Removed))
		sys.InvalidateAddresses()
	}, netwatch.WithInterval(cfg.WatchInterval))
}

// Module 是 socketsys 的 Fx 模块
//
// 启动时将 System 设为进程默认值，停止时恢复之前的默认值并关闭。
var Module = fx.Module("socketsys",
	fx.Provide(
		NewFromParams,
		NewWatcherFromParams,
		DefaultRegistry,
	),
	fx.Invoke(registerLifecycle),
)

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC       fx.Lifecycle
	System   *System
	Registry *Registry
	Watcher  *netwatch.Watcher `optional:"true"`
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	var prev *System
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if input.Watcher != nil {
				if err := input.Watcher.Start(ctx); err != nil {
					return err
				}
			}
			prev = input.Registry.SetDefault(input.System)
			logger.Info("socket 系统已启动", "system", input.System.String(), "native", input.System.IsNative())
			return nil
		},
		OnStop: func(_ context.Context) error {
			if input.Watcher != nil {
				_ = input.Watcher.Stop()
			}
			input.Registry.SetDefault(prev)
			logger.Info("socket 系统已停止", "system", input.System.String())
			return input.System.Close()
		},
	})
}
