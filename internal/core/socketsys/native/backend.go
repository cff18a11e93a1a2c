package native

import (
	"context"
	"net"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/handle"
	"github.com/dep2p/go-socketsys/internal/core/socketsys/tcp"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys/native")

// DefaultSubSystemCacheSize 命名子系统缓存的默认容量
const DefaultSubSystemCacheSize = 32

// Options 原生后端选项
type Options struct {
	// ReusePort 监听时设置 SO_REUSEPORT
	ReusePort bool

	// SubSystemCacheSize 命名子系统缓存容量
	SubSystemCacheSize int

	// Standard 传给内部标准后端的选项
	Standard []tcp.Option
}

// Option 选项函数
type Option func(*Options)

// WithReusePort 设置是否启用 SO_REUSEPORT
func WithReusePort(enabled bool) Option {
	return func(o *Options) { o.ReusePort = enabled }
}

// WithSubSystemCacheSize 设置子系统缓存容量
func WithSubSystemCacheSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.SubSystemCacheSize = n
		}
	}
}

// WithStandardOptions 追加内部标准后端选项
func WithStandardOptions(opts ...tcp.Option) Option {
	return func(o *Options) { o.Standard = append(o.Standard, opts...) }
}

// Backend 原生 socket 后端
type Backend struct {
	name   string
	opts   Options
	std    *tcp.Backend
	subs   *lru.Cache[string, *Backend]
	closed atomic.Bool
}

var (
	_ socket.Backend          = (*Backend)(nil)
	_ socket.UnixBackend      = (*Backend)(nil)
	_ socket.SubSystemBackend = (*Backend)(nil)
	_ socket.NativeProber     = (*Backend)(nil)
)

// New 创建原生后端
func New(opts ...Option) (*Backend, error) {
	if err := supported(); err != nil {
		return nil, err
	}
	o := Options{SubSystemCacheSize: DefaultSubSystemCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	return newBackend("", o)
}

func newBackend(name string, o Options) (*Backend, error) {
	subs, err := lru.NewWithEvict[string, *Backend](o.SubSystemCacheSize, func(key string, sub *Backend) {
		logger.Debug("子系统已淘汰", "name", key)
		_ = sub.Close()
	})
	if err != nil {
		return nil, err
	}

	stdOpts := append([]tcp.Option{tcp.WithDialControl(reuseControl)}, o.Standard...)
	return &Backend{
		name: name,
		opts: o,
		std:  tcp.New(stdOpts...),
		subs: subs,
	}, nil
}

// Kind 返回 KindNative
func (b *Backend) Kind() socket.Kind { return socket.KindNative }

// IsNative 原生后端总是返回 true
func (b *Backend) IsNative() bool { return true }

// Name 返回子系统名称，根后端为空
func (b *Backend) Name() string { return b.name }

// CreateSocket 返回未连接的句柄
func (b *Backend) CreateSocket() socket.Socket { return handle.New() }

// OpenServerSocket 监听 ip:port
//
// native 为 true 时使用原生 listen(2) 并遵守 backlog，否则回退到标准实现。
func (b *Backend) OpenServerSocket(ip net.IP, port, backlog int, native bool) (socket.ServerSocket, error) {
	if b.closed.Load() {
		return nil, tcp.ErrBackendClosed
	}
	if !native {
		return b.std.OpenServerSocket(ip, port, backlog, false)
	}
	if backlog <= 0 {
		backlog = socket.DefaultBacklog
	}

	ln, err := listen(ip, port, backlog, b.opts.ReusePort)
	if err != nil {
		return nil, err
	}
	logger.Debug("原生监听已打开", "addr", ln.Addr().String(), "backlog", backlog, "subsystem", b.name)
	return handle.NewListener(ln, backlog, true), nil
}

// Connect 使用带端口复用的标准拨号
func (b *Backend) Connect(ctx context.Context, req socket.ConnectRequest) (socket.Socket, error) {
	if b.closed.Load() {
		return nil, tcp.ErrBackendClosed
	}
	return b.std.Connect(ctx, req)
}

// ConnectUnix 连接 Unix 域 socket
func (b *Backend) ConnectUnix(ctx context.Context, s socket.Socket, path string) (socket.Socket, error) {
	if b.closed.Load() {
		return nil, tcp.ErrBackendClosed
	}
	return b.std.ConnectUnix(ctx, s, path)
}

// OpenUnixServerSocket 监听 Unix 域 socket
func (b *Backend) OpenUnixServerSocket(path string) (socket.ServerSocket, error) {
	if b.closed.Load() {
		return nil, tcp.ErrBackendClosed
	}
	return b.std.OpenUnixServerSocket(path)
}

// SubSystem 返回名称对应的子系统后端
//
// 同名子系统在缓存中复用；空名称返回自身。
func (b *Backend) SubSystem(name string) socket.Backend {
	if name == "" || b.closed.Load() {
		return b
	}
	if sub, ok := b.subs.Get(name); ok {
		return sub
	}

	sub, err := newBackend(b.qualify(name), b.opts)
	if err != nil {
		logger.Warn("创建子系统失败，使用父后端", "name", name, "err", err)
		return b
	}
	if prev, ok, _ := b.subs.PeekOrAdd(name, sub); ok {
		_ = sub.Close()
		return prev
	}
	logger.Debug("子系统已创建", "name", sub.name)
	return sub
}

// Close 关闭后端及其全部子系统
func (b *Backend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	b.subs.Purge()
	return b.std.Close()
}

func (b *Backend) qualify(name string) string {
	if b.name == "" {
		return name
	}
	return b.name + "/" + name
}
