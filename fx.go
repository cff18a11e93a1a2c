package socketsys

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-socketsys/config"
	"github.com/dep2p/go-socketsys/internal/core/metrics"
	"github.com/dep2p/go-socketsys/internal/core/socketsys"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys")

// startTimeout Fx App 启动超时
const startTimeout = 15 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              App
// ════════════════════════════════════════════════════════════════════════════

// App 由 Fx 组装的 socket 系统
//
// Start 后 System 成为进程默认系统，Stop 时恢复之前的默认系统并关闭
// 所有仍在跟踪的监听 socket。
type App struct {
	app    *fx.App
	cfg    *config.Config
	system *System

	mu      sync.Mutex
	started bool
}

// New 创建 App，不启动
func New(opts ...Option) (*App, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}

	cfg, err := o.buildConfig()
	if err != nil {
		return nil, err
	}
	cfg.Log.Apply()

	a := &App{cfg: cfg}
	a.app = fx.New(buildModules(cfg, o, &a.system)...)
	if err := a.app.Err(); err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	return a, nil
}

// Start 创建并启动 App
func Start(ctx context.Context, opts ...Option) (*App, error) {
	a, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Start 启动 App
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return nil
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := a.app.Start(startCtx); err != nil {
		logger.Error("启动失败", "error", err)
		return fmt.Errorf("start failed: %w", err)
	}
	a.started = true
	logger.Debug("App 已启动", "backend", a.cfg.Socket.Backend)
	return nil
}

// Stop 停止 App
func (a *App) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return ErrAppNotStarted
	}
	a.started = false
	return a.app.Stop(ctx)
}

// System 返回 App 管理的系统
func (a *App) System() *System { return a.system }

// Config 返回生效的配置副本
func (a *App) Config() *config.Config { return config.CloneConfig(a.cfg) }

// ════════════════════════════════════════════════════════════════════════════
//                              模块组装
// ════════════════════════════════════════════════════════════════════════════

// buildModules 按配置组装 Fx 模块
func buildModules(cfg *config.Config, o *options, sys **socketsys.System) []fx.Option {
	modules := []fx.Option{
		// 1. 配置
		fx.Supply(cfg),
	}

	// 2. 可选依赖
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}
	if o.provider != nil {
		p := o.provider
		modules = append(modules, fx.Provide(func() InterfaceProvider { return p }))
	}

	// 3. 核心模块
	modules = append(modules,
		metrics.Module,
		socketsys.Module,
		fx.Populate(sys),
	)

	// 4. 用户选项
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// 5. Fx 日志，默认丢弃以免干扰用户日志
	zl := o.fxLogger
	if zl == nil {
		zl = zap.NewNop()
	}
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: zl}
	}))
	return modules
}
