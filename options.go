package socketsys

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dep2p/go-socketsys/config"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// Option App 配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置，为 nil 时使用 config.NewConfig()
	config *config.Config

	// 在基础配置上依次执行的修改
	mutators []func(*config.Config) error

	// 是否读取 SOCKETSYS_* 环境变量
	useEnv bool

	// 依赖注入
	registerer prometheus.Registerer
	provider   InterfaceProvider
	fxLogger   *zap.Logger

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{useEnv: true}
}

// apply 应用所有选项
func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// buildConfig 生成最终配置
//
// 顺序：基础配置 -> 选项修改 -> 环境变量 -> 校验。
func (o *options) buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if o.config != nil {
		cfg = config.CloneConfig(o.config)
	}
	for _, m := range o.mutators {
		if err := m(cfg); err != nil {
			return nil, err
		}
	}
	if o.useEnv {
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, fmt.Errorf("apply env: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (o *options) mutate(fn func(*config.Config) error) {
	o.mutators = append(o.mutators, fn)
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置来源
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置作为基础
//
// 配置会被复制，调用方之后的修改不影响 App。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载基础配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设配置
//
// 可用预设：standard、server、test。
func WithPreset(name string) Option {
	return func(o *options) error {
		o.mutate(func(cfg *config.Config) error {
			return config.ApplyPreset(cfg, name)
		})
		return nil
	}
}

// WithEnv 设置是否读取 SOCKETSYS_* 环境变量，默认读取
func WithEnv(enabled bool) Option {
	return func(o *options) error {
		o.useEnv = enabled
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              socket 配置
// ════════════════════════════════════════════════════════════════════════════

// WithBackend 选择后端：standard、native、test
func WithBackend(name string) Option {
	return func(o *options) error {
		if _, err := socket.ParseKind(name); err != nil {
			return err
		}
		o.mutate(func(cfg *config.Config) error {
			cfg.Socket = cfg.Socket.WithBackend(name)
			return nil
		})
		return nil
	}
}

// WithTestMode 开启测试模式：地址缓存永不过期，硬件标识返回测试值
func WithTestMode(enabled bool) Option {
	return func(o *options) error {
		o.mutate(func(cfg *config.Config) error {
			cfg.Socket = cfg.Socket.WithTestMode(enabled)
			return nil
		})
		return nil
	}
}

// WithAddressTTL 设置本地地址缓存有效期
func WithAddressTTL(ttl time.Duration) Option {
	return func(o *options) error {
		if ttl <= 0 {
			return fmt.Errorf("address ttl must be positive, got %v", ttl)
		}
		o.mutate(func(cfg *config.Config) error {
			cfg.Socket = cfg.Socket.WithAddressTTL(ttl)
			return nil
		})
		return nil
	}
}

// WithDialTimeout 设置未指定超时的连接使用的超时
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.mutate(func(cfg *config.Config) error {
			cfg.Socket.DialTimeout = config.Duration(d)
			return nil
		})
		return nil
	}
}

// WithReusePort 原生后端监听时设置 SO_REUSEPORT
func WithReusePort(enabled bool) Option {
	return func(o *options) error {
		o.mutate(func(cfg *config.Config) error {
			cfg.Socket.ReusePort = enabled
			return nil
		})
		return nil
	}
}

// WithWatchInterval 按间隔轮询网络变化，变化时作废地址缓存；0 表示关闭
func WithWatchInterval(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("watch interval cannot be negative, got %v", d)
		}
		o.mutate(func(cfg *config.Config) error {
			cfg.Socket.WatchInterval = config.Duration(d)
			return nil
		})
		return nil
	}
}

// WithMetrics 启用或禁用 Prometheus 指标
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.mutate(func(cfg *config.Config) error {
			cfg.Metrics.Enabled = enabled
			return nil
		})
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              依赖注入
// ════════════════════════════════════════════════════════════════════════════

// WithRegisterer 指定指标注册表，默认 prometheus.DefaultRegisterer
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithInterfaces 指定网络接口来源，默认读取主机接口
func WithInterfaces(p InterfaceProvider) Option {
	return func(o *options) error {
		o.provider = p
		return nil
	}
}

// WithFxLogger 将 Fx 事件输出到 l，默认丢弃
func WithFxLogger(l *zap.Logger) Option {
	return func(o *options) error {
		o.fxLogger = l
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
