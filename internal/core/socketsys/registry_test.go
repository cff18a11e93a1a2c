package socketsys

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/mem"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

func newTestRegistry(t *testing.T) (*Registry, *atomic.Int32) {
	t.Helper()
	var created atomic.Int32
	r := NewRegistry(func() *System {
		created.Add(1)
		return New(mem.New(), WithInterfaceProvider(testIfaces))
	})
	return r, &created
}

func TestRegistry_DefaultCreatedOnce(t *testing.T) {
	r, created := newTestRegistry(t)

	var g errgroup.Group
	systems := make([]*System, 16)
	for i := range systems {
		i := i
		g.Go(func() error {
			systems[i] = r.Current(context.Background())
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, created.Load())
	for _, s := range systems {
		assert.Same(t, systems[0], s)
	}
}

func TestRegistry_DefaultIsStandard(t *testing.T) {
	r := NewRegistry(nil)
	s := r.Default()
	require.NotNil(t, s)
	assert.Equal(t, socket.KindStandard, s.Kind())
	assert.Equal(t, "System[standard]", s.String())
}

func TestRegistry_ContextScopes(t *testing.T) {
	r, _ := newTestRegistry(t)
	def := r.Default()

	a := New(mem.New(), WithInterfaceProvider(testIfaces))
	b := New(mem.New(), WithInterfaceProvider(testIfaces))

	ctxA := SetCurrent(context.Background(), a)
	ctxB := SetCurrent(context.Background(), b)
	nested := SetCurrent(ctxA, b)

	assert.Same(t, a, r.Current(ctxA))
	assert.Same(t, b, r.Current(ctxB))
	assert.Same(t, b, r.Current(nested))
	assert.Same(t, def, r.Current(context.Background()))

	// nil 覆盖回到默认值
	assert.Same(t, def, r.Current(SetCurrent(ctxA, nil)))
	// nil context 也返回默认值
	var nilCtx context.Context
	assert.Same(t, def, r.Current(nilCtx))
}

func TestRegistry_SetDefault(t *testing.T) {
	r, created := newTestRegistry(t)

	s := New(mem.New(), WithInterfaceProvider(testIfaces))
	prev := r.SetDefault(s)
	assert.Nil(t, prev)
	assert.Same(t, s, r.Current(context.Background()))
	assert.Zero(t, created.Load())

	assert.Same(t, s, r.SetDefault(nil))
	fresh := r.Default()
	assert.NotSame(t, s, fresh)
	assert.EqualValues(t, 1, created.Load())
}

func TestRegistry_Enter(t *testing.T) {
	r, _ := newTestRegistry(t)
	def := r.Default()

	outer := New(mem.New(), WithInterfaceProvider(testIfaces))
	inner := New(mem.New(), WithInterfaceProvider(testIfaces))

	outerCtx, exitOuter := r.Enter(context.Background(), outer)
	defer exitOuter()
	assert.Same(t, outer, r.Current(outerCtx))

	innerCtx, exitInner := r.Enter(outerCtx, inner)
	assert.Same(t, inner, r.Current(innerCtx))
	assert.Same(t, outer, r.Current(outerCtx))

	exitInner()
	exitInner()
	assert.Error(t, innerCtx.Err())
	assert.Same(t, outer, r.Current(outerCtx))

	// 覆盖不泄漏到进入范围之外
	assert.Same(t, def, r.Current(context.Background()))
}

func TestRegistry_EnterIsolatedAcrossGoroutines(t *testing.T) {
	r, _ := newTestRegistry(t)
	def := r.Default()
	override := New(mem.New(), WithInterfaceProvider(testIfaces))

	entered := make(chan struct{})
	release := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		ctx, exit := r.Enter(context.Background(), override)
		defer exit()
		got := r.Current(ctx)
		close(entered)
		<-release
		if got != override {
			return errors.New("entered scope does not see override")
		}
		return nil
	})

	<-entered
	assert.Same(t, def, r.Current(context.Background()))
	close(release)
	require.NoError(t, g.Wait())
	assert.Same(t, def, r.Current(context.Background()))
}

// ============================================================================
//                              子系统
// ============================================================================

// namedBackend 每个名称返回独立后端的测试后端
type namedBackend struct {
	*mem.Backend
	name     string
	children map[string]*namedBackend
}

func newNamedBackend(name string) *namedBackend {
	return &namedBackend{Backend: mem.New(), name: name, children: map[string]*namedBackend{}}
}

func (n *namedBackend) SubSystem(name string) socket.Backend {
	if name == "" {
		return n
	}
	child, ok := n.children[name]
	if !ok {
		child = newNamedBackend(name)
		n.children[name] = child
	}
	return child
}

func TestCreateSubSystem_DefaultReturnsSame(t *testing.T) {
	r, _ := newTestRegistry(t)
	s := New(mem.New(), WithInterfaceProvider(testIfaces))
	ctx := SetCurrent(context.Background(), s)

	assert.Same(t, s, r.CreateSubSystem(ctx, "worker"))
}

func TestCreateSubSystem_Named(t *testing.T) {
	r, _ := newTestRegistry(t)
	s := New(newNamedBackend(""), WithInterfaceProvider(testIfaces))
	ctx := SetCurrent(context.Background(), s)

	a := r.CreateSubSystem(ctx, "alpha")
	again := r.CreateSubSystem(ctx, "alpha")
	beta := r.CreateSubSystem(ctx, "beta")

	assert.NotSame(t, s, a)
	assert.Same(t, a, again)
	assert.NotSame(t, a, beta)
	assert.Equal(t, "alpha", a.Backend().(*namedBackend).name)
	assert.True(t, s.Capabilities().SubSystems)

	// 子系统共享地址缓存
	assert.Same(t, s.AddressCache(), a.AddressCache())

	// 空名称返回自身
	assert.Same(t, s, r.CreateSubSystem(ctx, ""))
}

func TestGlobalRegistry(t *testing.T) {
	s := New(mem.New(), WithInterfaceProvider(testIfaces))
	ctx := SetCurrent(context.Background(), s)

	assert.Same(t, s, Current(ctx))
	assert.Same(t, s, CreateSubSystem(ctx, "anything"))
	assert.NotNil(t, Current(context.Background()))
	assert.Same(t, DefaultRegistry().Default(), Current(context.Background()))
}
