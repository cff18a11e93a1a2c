//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package native

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-socketsys/internal/core/socketsys/tcp"
	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

func newBackendT(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackend_Capabilities(t *testing.T) {
	b := newBackendT(t)
	assert.Equal(t, socket.KindNative, b.Kind())
	assert.Equal(t, socket.Capabilities{Native: true, Unix: true, SubSystems: true}, socket.CapabilitiesOf(b))
}

func TestBackend_NativeListenHonoursBacklog(t *testing.T) {
	b := newBackendT(t)

	ss, err := b.OpenServerSocket(net.IPv4(127, 0, 0, 1), 0, 7, true)
	require.NoError(t, err)
	defer ss.Close()

	assert.True(t, ss.IsNative())
	assert.Equal(t, 7, ss.Backlog())
	addr := ss.Addr().(*net.TCPAddr)
	assert.NotZero(t, addr.Port)

	accepted := make(chan socket.Socket, 1)
	go func() {
		s, _ := ss.Accept()
		accepted <- s
	}()

	s, err := b.Connect(context.Background(), socket.ConnectRequest{Remote: addr, Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer s.Close()

	peer := <-accepted
	require.NotNil(t, peer)
	peer.Close()
}

func TestBackend_DefaultBacklog(t *testing.T) {
	b := newBackendT(t)
	ss, err := b.OpenServerSocket(net.IPv4(127, 0, 0, 1), 0, 0, true)
	require.NoError(t, err)
	defer ss.Close()
	assert.Equal(t, socket.DefaultBacklog, ss.Backlog())
}

func TestBackend_WildcardListen(t *testing.T) {
	b := newBackendT(t)
	ss, err := b.OpenServerSocket(nil, 0, socket.DefaultBacklog, true)
	require.NoError(t, err)
	defer ss.Close()

	port := ss.Addr().(*net.TCPAddr).Port
	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 5*time.Second)
	require.NoError(t, err)
	conn.Close()
}

func TestBackend_StandardFallback(t *testing.T) {
	b := newBackendT(t)
	ss, err := b.OpenServerSocket(net.IPv4(127, 0, 0, 1), 0, 10, false)
	require.NoError(t, err)
	defer ss.Close()
	assert.False(t, ss.IsNative())
}

func TestBackend_ReusePort(t *testing.T) {
	b := newBackendT(t, WithReusePort(true))

	first, err := b.OpenServerSocket(net.IPv4(127, 0, 0, 1), 0, 10, true)
	require.NoError(t, err)
	defer first.Close()

	port := first.Addr().(*net.TCPAddr).Port
	second, err := b.OpenServerSocket(net.IPv4(127, 0, 0, 1), port, 10, true)
	require.NoError(t, err)
	second.Close()
}

func TestBackend_PortInUse(t *testing.T) {
	b := newBackendT(t)

	first, err := b.OpenServerSocket(net.IPv4(127, 0, 0, 1), 0, 10, true)
	require.NoError(t, err)
	defer first.Close()

	port := first.Addr().(*net.TCPAddr).Port
	_, err = b.OpenServerSocket(net.IPv4(127, 0, 0, 1), port, 10, true)
	assert.Error(t, err)
	assert.False(t, socket.IsConfigError(err))
}

func TestBackend_SubSystems(t *testing.T) {
	b := newBackendT(t)

	assert.Same(t, b, b.SubSystem(""))

	a1 := b.SubSystem("alpha")
	a2 := b.SubSystem("alpha")
	other := b.SubSystem("beta")

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, other)
	assert.NotSame(t, b, a1)
	assert.Equal(t, "alpha", a1.(*Backend).Name())

	nested := a1.(*Backend).SubSystem("inner")
	assert.Equal(t, "alpha/inner", nested.(*Backend).Name())
}

func TestBackend_SubSystemEviction(t *testing.T) {
	b := newBackendT(t, WithSubSystemCacheSize(1))

	first := b.SubSystem("one").(*Backend)
	_ = b.SubSystem("two")

	_, err := first.OpenServerSocket(net.IPv4(127, 0, 0, 1), 0, 1, true)
	assert.ErrorIs(t, err, tcp.ErrBackendClosed)
	assert.NotSame(t, first, b.SubSystem("one"))
}

func TestBackend_CloseClosesSubSystems(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	sub := b.SubSystem("x").(*Backend)

	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())

	_, err = sub.Connect(context.Background(), socket.ConnectRequest{Remote: &net.TCPAddr{Port: 1}})
	assert.ErrorIs(t, err, tcp.ErrBackendClosed)
	assert.Same(t, b, b.SubSystem("y"))
}
