package netwatch

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/netif"
)

// switchable 可在测试中替换返回值的 Provider
type switchable struct {
	mu    sync.Mutex
	descs []netif.Descriptor
	err   error
}

func (s *switchable) set(descs ...netif.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.descs, s.err = descs, nil
}

func (s *switchable) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *switchable) Interfaces() ([]netif.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]netif.Descriptor(nil), s.descs...), nil
}

func eth(ips ...string) netif.Descriptor {
	d := netif.Descriptor{Name: "eth0", Up: true, HardwareAddr: []byte{2, 0, 0, 0, 0, 1}}
	for _, s := range ips {
		d.Addrs = append(d.Addrs, net.ParseIP(s))
	}
	return d
}

// ============================================================================
// 指纹
// ============================================================================

func TestFingerprint_OrderIndependent(t *testing.T) {
	lo := netif.Descriptor{Name: "lo", Loopback: true, Up: true, Addrs: []net.IP{net.IPv4(127, 0, 0, 1)}}
	a := Fingerprint([]netif.Descriptor{eth("10.0.0.2", "10.0.0.3"), lo})
	b := Fingerprint([]netif.Descriptor{lo, eth("10.0.0.3", "10.0.0.2")})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprint_DetectsChanges(t *testing.T) {
	base := Fingerprint([]netif.Descriptor{eth("10.0.0.2")})

	assert.NotEqual(t, base, Fingerprint([]netif.Descriptor{eth("10.0.0.9")}))

	down := eth("10.0.0.2")
	down.Up = false
	assert.NotEqual(t, base, Fingerprint([]netif.Descriptor{down}))
}

// ============================================================================
// Check
// ============================================================================

func TestWatcher_Check(t *testing.T) {
	p := &switchable{}
	p.set(eth("10.0.0.2"))

	var events []Event
	w := New(p, func(ev Event) { events = append(events, ev) }, WithClock(clock.NewMock()))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.False(t, w.Check(), "未变化")

	p.set(eth("10.0.0.2", "10.0.0.5"))
	assert.True(t, w.Check())
	require.Len(t, events, 1)
	assert.Equal(t, "10.0.0.5", events[0].Added[0].String())
	assert.Empty(t, events[0].Removed)

	p.set(eth("10.0.0.5"))
	assert.True(t, w.Check())
	require.Len(t, events, 2)
	assert.Equal(t, "10.0.0.2", events[1].Removed[0].String())
	assert.Equal(t, events[0].Current, events[1].Previous)
}

func TestWatcher_EnumerationFailureIsNotChange(t *testing.T) {
	p := &switchable{}
	p.set(eth("10.0.0.2"))

	calls := 0
	w := New(p, func(Event) { calls++ }, WithClock(clock.NewMock()))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	p.fail(errors.New("netlink down"))
	assert.False(t, w.Check())

	p.set(eth("10.0.0.2"))
	assert.False(t, w.Check())
	assert.Zero(t, calls)
}

// ============================================================================
// 轮询
// ============================================================================

func TestWatcher_PollsOnTicker(t *testing.T) {
	p := &switchable{}
	p.set(eth("10.0.0.2"))

	mock := clock.NewMock()
	changed := make(chan Event, 1)
	w := New(p, func(ev Event) { changed <- ev }, WithClock(mock), WithInterval(time.Second))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.IsRunning())
	assert.Equal(t, time.Second, w.Interval())

	p.set(eth("192.168.1.10"))
	mock.Add(time.Second)

	select {
	case ev := <-changed:
		assert.Equal(t, "192.168.1.10", ev.Added[0].String())
	case <-time.After(2 * time.Second):
		t.Fatal("轮询未检测到变化")
	}
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	w := New(netif.Static(eth("10.0.0.2")), nil, WithClock(clock.NewMock()), WithInterval(-1))
	assert.Equal(t, DefaultInterval, w.Interval())

	assert.NoError(t, w.Stop())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))
	cancel()
	assert.True(t, w.IsRunning(), "启动 ctx 取消不应停止轮询")

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}
