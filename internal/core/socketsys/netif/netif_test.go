package netif

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemProvider_Interfaces(t *testing.T) {
	descs, err := NewSystemProvider().Interfaces()
	require.NoError(t, err)

	for _, d := range descs {
		assert.NotEmpty(t, d.Name)
		for _, ip := range d.Addrs {
			assert.NotNil(t, ip)
		}
	}
}

func TestStatic_ReturnsCopies(t *testing.T) {
	p := Static(Descriptor{
		Name:         "eth0",
		Addrs:        []net.IP{net.ParseIP("10.0.0.1").To4()},
		HardwareAddr: []byte{1, 2, 3, 4, 5, 6},
	})

	first, err := p.Interfaces()
	require.NoError(t, err)
	first[0].Addrs[0][0] = 99
	first[0].HardwareAddr[0] = 99

	second, err := p.Interfaces()
	require.NoError(t, err)
	assert.Equal(t, net.IP{10, 0, 0, 1}, second[0].Addrs[0])
	assert.Equal(t, byte(1), second[0].HardwareAddr[0])
}

func TestProviderFunc_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := ProviderFunc(func() ([]Descriptor, error) { return nil, boom }).Interfaces()
	assert.ErrorIs(t, err, boom)
}

func TestDescriptor_HasHardwareAddr(t *testing.T) {
	assert.False(t, Descriptor{}.HasHardwareAddr())
	assert.False(t, Descriptor{HardwareAddr: make([]byte, 6)}.HasHardwareAddr())
	assert.True(t, Descriptor{HardwareAddr: []byte{0, 0x1a, 0, 0, 0, 1}}.HasHardwareAddr())
}

func TestFlatten(t *testing.T) {
	a := net.ParseIP("10.0.0.1")
	b := net.ParseIP("127.0.0.1")
	c := net.ParseIP("::1")
	got := Flatten([]Descriptor{
		{Name: "eth0", Addrs: []net.IP{a}},
		{Name: "lo", Addrs: []net.IP{b, c}},
		{Name: "empty"},
	})
	assert.Equal(t, []net.IP{a, b, c}, got)
}
