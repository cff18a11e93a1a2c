package socketsys

import (
	"context"
	"sync"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/tcp"
)

// ============================================================================
//                              Registry
// ============================================================================

// Registry 当前 System 的登记处
//
// 查找顺序：context 覆盖 → 默认 System。
// 默认 System 在首次使用时惰性创建，使用标准后端。
type Registry struct {
	mu      sync.Mutex
	def     *System
	factory func() *System
}

// NewRegistry 创建登记处，factory 为 nil 时使用标准后端
func NewRegistry(factory func() *System) *Registry {
	if factory == nil {
		factory = func() *System { return New(tcp.New()) }
	}
	return &Registry{factory: factory}
}

// Default 返回默认 System，不会为 nil
func (r *Registry) Default() *System {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.def == nil {
		r.def = r.factory()
	}
	return r.def
}

// SetDefault 替换默认 System，返回之前的值（可能为 nil）
//
// s 为 nil 时清除默认值，下次使用时重新创建。
func (r *Registry) SetDefault(s *System) *System {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.def
	r.def = s
	return prev
}

// Enter 返回以 s 为当前 System 的子 context 和释放函数
//
// 覆盖只对返回的 context 及其派生者可见，其它 goroutine 不受影响。
// 释放函数取消返回的 context，多次调用是安全的。
func (r *Registry) Enter(ctx context.Context, s *System) (context.Context, func()) {
	return context.WithCancel(SetCurrent(ctx, s))
}

// Current 返回 ctx 范围内的当前 System
func (r *Registry) Current(ctx context.Context) *System {
	if ctx != nil {
		if s, ok := ctx.Value(currentKey{}).(*System); ok && s != nil {
			return s
		}
	}
	return r.Default()
}

// CreateSubSystem 向当前 System 请求命名子系统
func (r *Registry) CreateSubSystem(ctx context.Context, name string) *System {
	return r.Current(ctx).SubSystem(name)
}

// ============================================================================
//                              context 覆盖
// ============================================================================

type currentKey struct{}

// SetCurrent 返回以 s 为当前 System 的 context
//
// s 为 nil 时返回的 context 不再覆盖，回到登记处的默认值。
func SetCurrent(ctx context.Context, s *System) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, currentKey{}, s)
}

// ============================================================================
//                              进程级登记处
// ============================================================================

var global = NewRegistry(nil)

// DefaultRegistry 返回进程级登记处
func DefaultRegistry() *Registry { return global }

// Current 返回进程级登记处中 ctx 范围内的当前 System
func Current(ctx context.Context) *System { return global.Current(ctx) }

// CreateSubSystem 向当前 System 请求命名子系统
func CreateSubSystem(ctx context.Context, name string) *System {
	return global.CreateSubSystem(ctx, name)
}
