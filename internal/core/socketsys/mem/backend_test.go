package mem

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-socketsys/pkg/interfaces/socket"
)

func TestBackend_Capabilities(t *testing.T) {
	assert.Equal(t, socket.Capabilities{}, socket.CapabilitiesOf(New()))
	assert.Equal(t, socket.Capabilities{Native: true}, socket.CapabilitiesOf(New(WithNative(true))))
	assert.Equal(t, socket.Capabilities{Builder: true}, socket.CapabilitiesOf(NewWithBuilder()))
}

func TestBackend_ListenRecordsCall(t *testing.T) {
	b := New()
	ss, err := b.OpenServerSocket(nil, 8080, 100, true)
	require.NoError(t, err)
	defer ss.Close()

	c, ok := b.LastCall()
	require.True(t, ok)
	assert.Equal(t, Call{Op: OpListen, Port: 8080, Backlog: 100, Native: true}, c)
	assert.Equal(t, 8080, ss.Addr().(*net.TCPAddr).Port)
	assert.False(t, ss.IsNative())
}

func TestBackend_EphemeralPorts(t *testing.T) {
	b := New()
	a, err := b.OpenServerSocket(nil, 0, 1, false)
	require.NoError(t, err)
	defer a.Close()
	c, err := b.OpenServerSocket(nil, 0, 1, false)
	require.NoError(t, err)
	defer c.Close()

	assert.NotEqual(t, a.Addr().(*net.TCPAddr).Port, c.Addr().(*net.TCPAddr).Port)
}

func TestBackend_AddressInUse(t *testing.T) {
	b := New()
	ss, err := b.OpenServerSocket(nil, 9000, 1, false)
	require.NoError(t, err)

	_, err = b.OpenServerSocket(nil, 9000, 1, false)
	assert.ErrorIs(t, err, ErrAddressInUse)

	// 关闭后端口可以复用
	require.NoError(t, ss.Close())
	ss, err = b.OpenServerSocket(nil, 9000, 1, false)
	require.NoError(t, err)
	ss.Close()
}

func TestBackend_ConnectPipe(t *testing.T) {
	b := New()
	ss, err := b.OpenServerSocket(nil, 7000, 4, false)
	require.NoError(t, err)
	defer ss.Close()

	remote := &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 7000}
	s, err := b.Connect(context.Background(), socket.ConnectRequest{Remote: remote, TLS: true})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, socket.StateConnected, s.State())
	assert.True(t, s.IsTLS())
	assert.Equal(t, remote.String(), s.RemoteAddr().String())

	peer, err := ss.Accept()
	require.NoError(t, err)
	defer peer.Close()

	go func() { _, _ = s.Conn().Write([]byte("hello")) }()
	buf := make([]byte, 5)
	_, err = io.ReadFull(peer.Conn(), buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
}

func TestBackend_ConnectRefused(t *testing.T) {
	b := New()
	h := b.CreateSocket()
	_, err := b.Connect(context.Background(), socket.ConnectRequest{
		Socket: h,
		Remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1},
	})
	assert.ErrorIs(t, err, ErrConnectionRefused)
	assert.Equal(t, socket.StateFailed, h.State())
}

func TestBackend_ConnectTimeoutWhenBacklogFull(t *testing.T) {
	b := New()
	ss, err := b.OpenServerSocket(nil, 7001, 1, false)
	require.NoError(t, err)
	defer ss.Close()

	remote := &net.TCPAddr{Port: 7001}
	first, err := b.Connect(context.Background(), socket.ConnectRequest{Remote: remote})
	require.NoError(t, err)
	defer first.Close()

	_, err = b.Connect(context.Background(), socket.ConnectRequest{Remote: remote, Timeout: 20 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackend_ConnectRefusedWhenListenerClosing(t *testing.T) {
	b := New()
	ss, err := b.OpenServerSocket(nil, 7002, 4, false)
	require.NoError(t, err)
	defer ss.Close()

	// 监听者已标记关闭但 done 尚未关闭，积压队列仍可写入
	b.mu.Lock()
	l := b.listeners[7002]
	b.mu.Unlock()
	require.NotNil(t, l)
	l.closed.Store(true)

	h := b.CreateSocket()
	_, err = b.Connect(context.Background(), socket.ConnectRequest{Socket: h, Remote: &net.TCPAddr{Port: 7002}})
	assert.ErrorIs(t, err, ErrConnectionRefused)
	assert.Equal(t, socket.StateFailed, h.State())

	// 留在队列中的服务端连接已关闭
	queued := <-l.pending
	_, err = queued.Write([]byte("x"))
	assert.Error(t, err)
}

func TestBackend_InjectedError(t *testing.T) {
	boom := errors.New("boom")
	b := New(WithConnectError(boom))
	_, err := b.Connect(context.Background(), socket.ConnectRequest{Remote: &net.TCPAddr{Port: 1}})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, b.Calls(), 1)
}

func TestBackend_AcceptAfterClose(t *testing.T) {
	b := New()
	ss, err := b.OpenServerSocket(nil, 0, 1, false)
	require.NoError(t, err)
	require.NoError(t, ss.Close())

	_, err = ss.Accept()
	assert.ErrorIs(t, err, socket.ErrSocketClosed)
}

func TestBackend_Reset(t *testing.T) {
	b := New()
	b.CreateSocket()
	require.Len(t, b.Calls(), 1)
	b.Reset()
	assert.Empty(t, b.Calls())
	_, ok := b.LastCall()
	assert.False(t, ok)
}

func TestBuilderBackend_ValidateRequest(t *testing.T) {
	b := NewWithBuilder()
	assert.ErrorIs(t, b.ValidateRequest(socket.ConnectRequest{}), socket.ErrNoRemoteAddress)
	assert.NoError(t, b.ValidateRequest(socket.ConnectRequest{Remote: &net.TCPAddr{Port: 80}}))
}
