package l8tuio

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

// listenEphemeralUDP opens a loopback UDP socket on an OS-assigned port,
// mirroring the teacher corpus's test_udp_listener.go harness.
func listenEphemeralUDP(t *testing.T) *net.UDPConn {
	t.Helper()
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	require.NoError(t, err)
	conn, err := net.ListenUDP("udp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestEmitter_SendsOneBundlePerFrame(t *testing.T) {
	listener := listenEphemeralUDP(t)
	port := listener.LocalAddr().(*net.UDPAddr).Port

	e := NewEmitter("lumentouch", "testhost", time.Second, 10*time.Millisecond)
	require.NoError(t, e.AddEndpoint(Endpoint{Host: "127.0.0.1", Port: port, ScreenID: 0}))

	touches := []l7track.Touch{{SessionID: 1, U: 0.3, V: 0.4}}
	e.EmitScreenFrame(0, touches, 1000)

	buf := make([]byte, MaxDatagramBytes)
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Greater(t, n, 0)
	require.Equal(t, "#bundle\x00", string(buf[:8]))
}

func TestEmitter_IgnoresOtherScreens(t *testing.T) {
	listener := listenEphemeralUDP(t)
	port := listener.LocalAddr().(*net.UDPAddr).Port

	e := NewEmitter("lumentouch", "testhost", time.Second, 10*time.Millisecond)
	require.NoError(t, e.AddEndpoint(Endpoint{Host: "127.0.0.1", Port: port, ScreenID: 7}))

	e.EmitScreenFrame(0, nil, 1000) // screen 0, endpoint wants screen 7

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(50*time.Millisecond)))
	buf := make([]byte, MaxDatagramBytes)
	_, _, err := listener.ReadFromUDP(buf)
	require.Error(t, err) // deadline exceeded, nothing was sent
}

func TestEmitter_SuppressesUnchangedFramesUntilHeartbeat(t *testing.T) {
	listener := listenEphemeralUDP(t)
	port := listener.LocalAddr().(*net.UDPAddr).Port

	heartbeat := 50 * time.Millisecond
	e := NewEmitter("lumentouch", "testhost", heartbeat, 10*time.Millisecond)
	require.NoError(t, e.AddEndpoint(Endpoint{Host: "127.0.0.1", Port: port, ScreenID: 0}))

	touches := []l7track.Touch{{SessionID: 1, U: 0.3, V: 0.4}}

	e.EmitScreenFrame(0, touches, 0) // first send always goes out
	drain(t, listener)

	e.EmitScreenFrame(0, touches, int64(10*time.Millisecond)) // unchanged, well within heartbeat
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(30*time.Millisecond)))
	buf := make([]byte, MaxDatagramBytes)
	_, _, err := listener.ReadFromUDP(buf)
	require.Error(t, err, "unchanged frame inside the heartbeat window should be suppressed")

	e.EmitScreenFrame(0, touches, int64(heartbeat)+int64(time.Millisecond)) // past the heartbeat deadline
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err, "heartbeat deadline must force a send even with no changes")
	require.Greater(t, n, 0)
}

func TestEmitter_Shutdown_SendsFinalEmptyAliveBundle(t *testing.T) {
	listener := listenEphemeralUDP(t)
	port := listener.LocalAddr().(*net.UDPAddr).Port

	e := NewEmitter("lumentouch", "testhost", time.Second, 10*time.Millisecond)
	require.NoError(t, e.AddEndpoint(Endpoint{Host: "127.0.0.1", Port: port, ScreenID: 0}))
	e.EmitScreenFrame(0, []l7track.Touch{{SessionID: 1, U: 0.5, V: 0.5}}, 0)
	drain(t, listener)

	e.Shutdown()

	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, MaxDatagramBytes)
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	kinds := decodeBundleMessageAddresses(t, buf[:n])
	require.Contains(t, kinds, "alive")
	// Shutdown's alive message lists zero session ids: there is exactly one
	// "alive" kind marker and no "set" markers in the final bundle.
	require.NotContains(t, kinds, "set")
}

func drain(t *testing.T, conn *net.UDPConn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	buf := make([]byte, MaxDatagramBytes)
	_, _, _ = conn.ReadFromUDP(buf)
}
