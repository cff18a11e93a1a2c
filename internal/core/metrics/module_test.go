package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-socketsys/config"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Load 测试模块加载
func TestModule_Load(t *testing.T) {
	var reporter Reporter

	app := fxtest.New(t,
		fx.Provide(func() prometheus.Registerer { return prometheus.NewRegistry() }),
		Module,
		fx.Populate(&reporter),
	)
	defer app.RequireStart().RequireStop()

	assert.NotNil(t, reporter)
	reporter.LogListen(socket.KindStandard, nil)
}

// TestModule_Disabled 测试禁用指标
func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false

	var reporter Reporter
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&reporter),
	)
	defer app.RequireStart().RequireStop()

	c, ok := reporter.(*Collector)
	assert.True(t, ok)
	assert.Nil(t, c)
	assert.NotPanics(t, func() { reporter.LogAddressRefresh(1, nil) })
}

// TestConfigFromUnified 测试配置转换
func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Metrics.Namespace = "edge"
	got := ConfigFromUnified(cfg)
	assert.True(t, got.Enabled)
	assert.Equal(t, "edge", got.Namespace)
}
