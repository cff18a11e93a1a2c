package socketsys

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-socketsys/tests/mocks"
)

// ============================================================================
// 便捷方法归约到后端规范操作
// ============================================================================

func TestDelegation_Listen(t *testing.T) {
	backend := mocks.NewMockBackend()
	sys := NewSystem(backend, WithInterfaceProvider(loopbackIfaces))

	srv, err := sys.OpenServerSocket(8080)
	require.NoError(t, err)

	require.Len(t, backend.ListenCalls, 1)
	call := backend.ListenCalls[0]
	assert.Nil(t, call.IP)
	assert.Equal(t, 8080, call.Port)
	assert.Equal(t, DefaultBacklog, call.Backlog)
	assert.True(t, call.Native)

	require.NoError(t, sys.Close())
	assert.NoError(t, sys.Close(), "重复关闭")
	_, err = srv.Accept()
	assert.ErrorIs(t, err, ErrSocketClosed, "Close 应当关闭跟踪的监听 socket")
}

func TestDelegation_Connect(t *testing.T) {
	backend := mocks.NewMockBackend()
	sys := NewSystem(backend, WithInterfaceProvider(loopbackIfaces))

	s, err := sys.ConnectTLS(net.IPv4(10, 0, 0, 1), 443, 3*time.Second, true)
	require.NoError(t, err)
	assert.True(t, s.IsTLS())

	req, ok := backend.LastConnect()
	require.True(t, ok)
	assert.Nil(t, req.Socket)
	assert.Nil(t, req.Local)
	assert.Equal(t, 443, req.Remote.Port)
	assert.Equal(t, 3*time.Second, req.Timeout)
	assert.True(t, req.TLS)

	_, err = sys.Connect("", 22)
	require.NoError(t, err)
	req, _ = backend.LastConnect()
	assert.Equal(t, "127.0.0.1", req.Remote.IP.String())
	assert.Equal(t, NoTimeout, req.Timeout)
}

func TestDelegation_ErrorsPropagateUnchanged(t *testing.T) {
	backend := &mocks.MockBackend{
		ConnectFunc: func(context.Context, ConnectRequest) (Socket, error) {
			return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
		},
	}
	sys := NewSystem(backend)

	_, err := sys.ConnectAddr(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}, time.Second)
	require.Error(t, err)

	var opErr *net.OpError
	assert.True(t, errors.As(err, &opErr))
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	assert.False(t, IsConfigError(err))
}

func TestDelegation_PlainBackendCapabilities(t *testing.T) {
	sys := NewSystem(mocks.NewMockBackend())

	assert.Equal(t, Capabilities{}, sys.Capabilities())
	assert.False(t, sys.IsNative())

	_, err := sys.NewConnectBuilder()
	assert.True(t, IsConfigError(err))

	_, err = sys.OpenUnixServerSocket("/tmp/x.sock")
	assert.ErrorIs(t, err, ErrUnsupported)

	assert.Equal(t, StateUnopened, sys.CreateSocket().State())
	assert.Same(t, sys, sys.SubSystem("any"))
}
