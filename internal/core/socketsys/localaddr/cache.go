package localaddr

import (
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/netif"
	"github.com/dep2p/go-socketsys/pkg/lib/log"
)

var logger = log.Logger("socketsys/localaddr")

const (
	// DefaultTTL 正常运行时的缓存有效期
	DefaultTTL = 2 * time.Minute

	// LoopbackFallback 地址列表为空时的主机地址
	LoopbackFallback = "127.0.0.1"
)

// entry 缓存条目，addrs 一经写入不再原地修改
type entry struct {
	addrs     []net.IP
	expiresAt time.Time
	forever   bool
}

func (e *entry) expired(now time.Time) bool {
	return !e.forever && !now.Before(e.expiresAt)
}

// RefreshHook 每次重新枚举后回调，err 非空表示枚举失败
type RefreshHook func(count int, err error)

// Cache 本地地址缓存
type Cache struct {
	mu sync.Mutex

	provider netif.Provider
	clock    clock.Clock
	ttl      time.Duration
	forever  bool
	hook     RefreshHook

	entry *entry
}

// Option 缓存选项
type Option func(*Cache)

// WithClock 设置时间源
func WithClock(c clock.Clock) Option {
	return func(cache *Cache) { cache.clock = c }
}

// WithTTL 设置有效期
func WithTTL(ttl time.Duration) Option {
	return func(cache *Cache) {
		if ttl > 0 {
			cache.ttl = ttl
		}
	}
}

// WithTestMode 测试模式下缓存永不过期
func WithTestMode(enabled bool) Option {
	return func(cache *Cache) { cache.forever = enabled }
}

// WithRefreshHook 设置刷新回调
func WithRefreshHook(h RefreshHook) Option {
	return func(cache *Cache) { cache.hook = h }
}

// NewCache 创建地址缓存
func NewCache(p netif.Provider, opts ...Option) *Cache {
	if p == nil {
		p = netif.NewSystemProvider()
	}
	c := &Cache{
		provider: p,
		clock:    clock.New(),
		ttl:      DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL 返回有效期，测试模式返回 0
func (c *Cache) TTL() time.Duration {
	if c.forever {
		return 0
	}
	return c.ttl
}

// LocalAddresses 返回已排序本地地址的副本
//
// 缓存缺失或过期时重新枚举。枚举失败时保留之前的值（首次失败为空），
// 并按新的有效期重新入缓存，避免每次调用都重试。
func (c *Cache) LocalAddresses() []net.IP {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.entry == nil || c.entry.expired(now) {
		c.refreshLocked(now)
	}
	return cloneIPs(c.entry.addrs)
}

// HostAddress 返回首选本地地址的文本形式
func (c *Cache) HostAddress() string {
	addrs := c.LocalAddresses()
	if len(addrs) == 0 {
		return LoopbackFallback
	}
	return addrs[0].String()
}

// Invalidate 丢弃缓存，下次调用重新枚举
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

// refreshLocked 重新枚举并替换缓存条目，调用方持有 c.mu
func (c *Cache) refreshLocked(now time.Time) {
	var prev []net.IP
	if c.entry != nil {
		prev = c.entry.addrs
	}

	addrs := prev
	descs, err := c.provider.Interfaces()
	if err != nil {
		logger.Warn("枚举网络接口失败，沿用旧地址", "err", err, "cached", len(prev))
	} else {
		addrs = cloneIPs(netif.Flatten(descs))
		Sort(addrs)
		logger.Debug("本地地址已刷新", "count", len(addrs))
	}
	if addrs == nil {
		addrs = []net.IP{}
	}

	c.entry = &entry{
		addrs:     addrs,
		expiresAt: now.Add(c.ttl),
		forever:   c.forever,
	}

	if c.hook != nil {
		c.hook(len(addrs), err)
	}
}

// ============================================================================
//                              进程级测试缓存
// ============================================================================

var (
	sharedOnce  sync.Once
	sharedCache *Cache
)

// Shared 返回进程级共享的测试模式缓存
//
// 测试模式下所有使用系统接口的 socket 系统共享同一份地址视图。
func Shared() *Cache {
	sharedOnce.Do(func() {
		sharedCache = NewCache(netif.NewSystemProvider(), WithTestMode(true))
	})
	return sharedCache
}
