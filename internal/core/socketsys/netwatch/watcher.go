// Package netwatch 轮询网络接口变化
//
// Watcher 定期对接口快照计算指纹，指纹变化时回调 Handler。
// socket 系统用它在网络切换后立即作废本地地址缓存，而不必等待 TTL。
package netwatch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/netif"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys/netwatch")

// DefaultInterval 默认轮询间隔
const DefaultInterval = 10 * time.Second

// ============================================================================
//                              事件
// ============================================================================

// Event 网络变化事件
type Event struct {
	// Previous 变化前的指纹
	Previous string

	// Current 变化后的指纹
	Current string

	// Added 新出现的地址
	Added []net.IP

	// Removed 消失的地址
	Removed []net.IP

	// Time 检测时间
	Time time.Time
}

// Handler 事件回调，在轮询 goroutine 中同步调用
type Handler func(Event)

// ============================================================================
//                              Watcher
// ============================================================================

// Watcher 基于轮询的接口变化监听器
type Watcher struct {
	provider netif.Provider
	handler  Handler
	interval time.Duration
	clock    clock.Clock

	mu    sync.Mutex
	last  string
	addrs map[string]net.IP

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option 配置 Watcher
type Option func(*Watcher)

// WithInterval 设置轮询间隔，<=0 时使用 DefaultInterval
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithClock 设置时间源
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// New 创建监听器，p 为 nil 时读取主机接口
func New(p netif.Provider, h Handler, opts ...Option) *Watcher {
	if p == nil {
		p = netif.NewSystemProvider()
	}
	w := &Watcher{
		provider: p,
		handler:  h,
		interval: DefaultInterval,
		clock:    clock.New(),
		addrs:    map[string]net.IP{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Interval 返回轮询间隔
func (w *Watcher) Interval() time.Duration { return w.interval }

// Start 记录当前指纹并启动轮询
func (w *Watcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	w.mu.Lock()
	w.last, w.addrs = w.snapshot()
	w.mu.Unlock()

	// 轮询不受启动 ctx 的截止时间约束
	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel

	ticker := w.clock.Ticker(w.interval)
	w.wg.Add(1)
	go w.loop(pollCtx, ticker)

	logger.Info("网络变化监听器已启动", "interval", w.interval)
	return nil
}

// Stop 停止轮询并等待 goroutine 退出
func (w *Watcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	w.cancel()
	w.wg.Wait()
	logger.Info("网络变化监听器已停止")
	return nil
}

// IsRunning 是否正在轮询
func (w *Watcher) IsRunning() bool {
	return w.running.Load()
}

func (w *Watcher) loop(ctx context.Context, ticker *clock.Ticker) {
	defer w.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check 立即比较一次指纹，发生变化时回调并返回 true
//
// 枚举失败时保留上次指纹，不视为变化。
func (w *Watcher) Check() bool {
	fp, addrs := w.snapshot()
	if fp == "" {
		return false
	}

	w.mu.Lock()
	prev, prevAddrs := w.last, w.addrs
	if fp == prev {
		w.mu.Unlock()
		return false
	}
	w.last, w.addrs = fp, addrs
	w.mu.Unlock()

	ev := Event{
		Previous: prev,
		Current:  fp,
		Added:    diff(addrs, prevAddrs),
		Removed:  diff(prevAddrs, addrs),
		Time:     w.clock.Now(),
	}
	logger.Debug("检测到网络变化",
		"old", log.TruncateID(prev, 8),
		"new", log.TruncateID(fp, 8),
		"added", len(ev.Added),
		"removed", len(ev.Removed))

	if w.handler != nil {
		w.handler(ev)
	}
	return true
}

// snapshot 返回指纹与地址集合，枚举失败时指纹为空
func (w *Watcher) snapshot() (string, map[string]net.IP) {
	descs, err := w.provider.Interfaces()
	if err != nil {
		logger.Debug("枚举网络接口失败", "error", err)
		return "", nil
	}
	addrs := make(map[string]net.IP)
	for _, ip := range netif.Flatten(descs) {
		addrs[ip.String()] = ip
	}
	return Fingerprint(descs), addrs
}

// diff 返回 a 中存在而 b 中不存在的地址，按文本排序
func diff(a, b map[string]net.IP) []net.IP {
	var keys []string
	for k := range a {
		if _, ok := b[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]net.IP, 0, len(keys))
	for _, k := range keys {
		out = append(out, a[k])
	}
	return out
}

// ============================================================================
//                              网络指纹
// ============================================================================

// Fingerprint 计算接口快照的指纹
//
// 结果与接口和地址的顺序无关，包含名称、启用状态、硬件地址和 IP。
func Fingerprint(descs []netif.Descriptor) string {
	parts := make([]string, 0, len(descs))
	for _, d := range descs {
		addrs := make([]string, 0, len(d.Addrs))
		for _, ip := range d.Addrs {
			addrs = append(addrs, ip.String())
		}
		sort.Strings(addrs)

		state := "down"
		if d.Up {
			state = "up"
		}
		parts = append(parts, d.Name+":"+state+":"+net.HardwareAddr(d.HardwareAddr).String()+":["+strings.Join(addrs, ",")+"]")
	}
	sort.Strings(parts)

	h := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}
