package socketsys

import (
	"context"

	"github.com/dep2p/go-socketsys/config"
	"github.com/dep2p/go-socketsys/internal/core/socketsys"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/mem"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/tcp"
)

// ════════════════════════════════════════════════════════════════════════════
//                              当前系统
// ════════════════════════════════════════════════════════════════════════════

// Current 返回 ctx 作用域内的系统
//
// 依次查找 ctx 上绑定的系统、Enter 进入的系统，最后是进程默认系统。
// 默认系统在首次访问时以标准后端创建。
func Current(ctx context.Context) *System {
	return socketsys.Current(ctx)
}

// SetCurrent 返回绑定了 s 的 ctx
//
// s 为 nil 时清除绑定，作用域内回退到默认系统。
func SetCurrent(ctx context.Context, s *System) context.Context {
	return socketsys.SetCurrent(ctx, s)
}

// CreateSubSystem 基于当前系统创建命名子系统
//
// 后端不支持子系统时返回当前系统本身。
func CreateSubSystem(ctx context.Context, name string) *System {
	return socketsys.CreateSubSystem(ctx, name)
}

// Default 返回进程默认系统
func Default() *System {
	return socketsys.DefaultRegistry().Default()
}

// SetDefault 替换进程默认系统并返回之前的值
//
// s 为 nil 时清除默认值，下次访问重新创建。
func SetDefault(s *System) *System {
	return socketsys.DefaultRegistry().SetDefault(s)
}

// Enter 返回以 s 为当前系统的子 context，覆盖只在该 context 范围内生效
//
// 返回的函数释放该 context。
func Enter(ctx context.Context, s *System) (context.Context, func()) {
	return socketsys.DefaultRegistry().Enter(ctx, s)
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造
// ════════════════════════════════════════════════════════════════════════════

// NewSystem 使用 backend 创建系统
func NewSystem(backend Backend, opts ...SystemOption) *System {
	return socketsys.New(backend, opts...)
}

// NewStandardSystem 创建标准库后端的系统
func NewStandardSystem(opts ...SystemOption) *System {
	return socketsys.New(tcp.New(), opts...)
}

// NewTestSystem 创建进程内测试后端的系统，默认开启测试模式
func NewTestSystem(opts ...SystemOption) *System {
	opts = append([]SystemOption{socketsys.WithTestMode(true), socketsys.WithHardwareTestMode(true)}, opts...)
	return socketsys.New(mem.NewWithBuilder(), opts...)
}

// NewSystemFromConfig 按统一配置创建系统，不经过依赖注入
//
// cfg 为 nil 时使用默认配置。
func NewSystemFromConfig(cfg *config.Config, opts ...SystemOption) (*System, error) {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	sc := socketsys.ConfigFromUnified(cfg)
	backend, err := socketsys.NewBackend(sc)
	if err != nil {
		return nil, err
	}
	return socketsys.New(backend, append(sc.Options(), opts...)...), nil
}
