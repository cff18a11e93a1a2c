package socketsys

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dep2p/go-socketsys/config"
)

var loopbackIfaces = StaticInterfaces(InterfaceDescriptor{
	Name:     "lo",
	Loopback: true,
	Up:       true,
	Addrs:    []net.IP{net.IPv4(127, 0, 0, 1)},
})

// newTestApp 创建使用内存后端的 App
func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	base := []Option{
		WithEnv(false),
		WithPreset("test"),
		WithInterfaces(loopbackIfaces),
		WithRegisterer(prometheus.NewRegistry()),
	}
	app, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return app
}

// ============================================================================
// App 生命周期
// ============================================================================

func TestApp_StartStop(t *testing.T) {
	ctx := context.Background()
	before := Default()

	app := newTestApp(t)
	require.NotNil(t, app.System())
	assert.Equal(t, KindTest, app.System().Kind())

	require.NoError(t, app.Start(ctx))
	assert.Same(t, app.System(), Current(ctx))
	assert.NoError(t, app.Start(ctx), "重复启动应当无操作")

	require.NoError(t, app.Stop(ctx))
	assert.Same(t, before, Default())
	assert.ErrorIs(t, app.Stop(ctx), ErrAppNotStarted)
}

func TestApp_ScopedOverride(t *testing.T) {
	ctx := context.Background()
	app, err := Start(ctx, WithEnv(false), WithPreset("test"), WithInterfaces(loopbackIfaces),
		WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer app.Stop(ctx)

	other := NewTestSystem()
	scoped := SetCurrent(ctx, other)

	assert.Same(t, other, Current(scoped))
	assert.Same(t, app.System(), Current(ctx))
}

func TestApp_ListenAndConnect(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	require.NoError(t, app.Start(ctx))
	defer app.Stop(ctx)

	sys := Current(ctx)
	srv, err := sys.OpenServerSocket(0)
	require.NoError(t, err)
	port := srv.Addr().(*net.TCPAddr).Port

	conn, err := sys.ConnectTimeout(net.IPv4(127, 0, 0, 1), port, time.Second)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, StateConnected, conn.State())

	accepted, err := srv.Accept()
	require.NoError(t, err)
	defer accepted.Close()
}

func TestApp_Config(t *testing.T) {
	app := newTestApp(t, WithAddressTTL(30*time.Second), WithDialTimeout(2*time.Second), WithWatchInterval(time.Minute))

	cfg := app.Config()
	assert.Equal(t, "test", cfg.Socket.Backend)
	assert.Equal(t, 30*time.Second, cfg.Socket.AddressTTL.Duration())
	assert.Equal(t, 2*time.Second, cfg.Socket.DialTimeout.Duration())
	assert.Equal(t, time.Minute, cfg.Socket.WatchInterval.Duration())
	assert.False(t, cfg.Metrics.Enabled)

	cfg.Socket.Backend = "native"
	assert.Equal(t, "test", app.Config().Socket.Backend, "Config 应当返回副本")
}

func TestApp_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "socketsys.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"socket":{"backend":"test","address_ttl":"45s"}}`), 0o600))

	app, err := New(WithEnv(false), WithConfigFile(path), WithInterfaces(loopbackIfaces),
		WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	assert.Equal(t, KindTest, app.System().Kind())
	assert.Equal(t, 45*time.Second, app.Config().Socket.AddressTTL.Duration())
}

func TestApp_InvalidOptions(t *testing.T) {
	_, err := New(WithEnv(false), WithBackend("quantum"))
	assert.Error(t, err)

	_, err = New(WithEnv(false), WithAddressTTL(0))
	assert.Error(t, err)

	_, err = New(WithEnv(false), WithConfig(nil))
	assert.Error(t, err)

	_, err = New(WithEnv(false), WithConfigFile(filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, err)

	_, err = New(WithEnv(false), WithWatchInterval(-time.Second))
	assert.Error(t, err)

	_, err = New(WithEnv(false), WithPreset("nope"))
	assert.Error(t, err)
}

func TestApp_WithConfigIsCopied(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Socket.Backend = "test"
	cfg.Metrics.Enabled = false

	app, err := New(WithEnv(false), WithConfig(cfg), WithInterfaces(loopbackIfaces))
	require.NoError(t, err)

	cfg.Socket.Backend = "native"
	assert.Equal(t, KindTest, app.System().Kind())
}

func TestApp_Env(t *testing.T) {
	t.Setenv(config.EnvBackend, "test")
	t.Setenv(config.EnvAddressTTL, "90")

	app, err := New(WithMetrics(false), WithInterfaces(loopbackIfaces))
	require.NoError(t, err)
	assert.Equal(t, KindTest, app.System().Kind())
	assert.Equal(t, 90*time.Second, app.Config().Socket.AddressTTL.Duration())
}

func TestApp_FxLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newTestApp(t, WithFxLogger(zap.New(core)))

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Stop(ctx))

	assert.NotZero(t, logs.Len(), "Fx 事件应当写入指定的 zap logger")
}

func TestApp_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := newTestApp(t, WithMetrics(true), WithRegisterer(reg))

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	defer app.Stop(ctx)

	srv, err := app.System().OpenServerSocket(0)
	require.NoError(t, err)
	defer srv.Close()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "socketsys_listen_total")
}
