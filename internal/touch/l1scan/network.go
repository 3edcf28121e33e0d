package l1scan

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// NetworkScanner reads framed UDP scan packets, one packet per full sweep.
// It is grounded on the teacher corpus's internal/lidar/network package
// (net.ListenUDP, SetReadBuffer, SetReadDeadline), simplified to the
// single-packet-per-sweep framing this domain's planar scanners use on
// Ethernet (as opposed to the teacher's multi-packet spinning-LiDAR
// protocol, which this module has no need to replicate).
type NetworkScanner struct {
	conn      *net.UDPConn
	stepCount int
	angStep   float64
	timeout   time.Duration
	buf       []byte
	closed    bool
}

// OpenNetworkScanner listens for scan packets on addr (host:port or :port
// for all interfaces).
func OpenNetworkScanner(addr string, params Params) (*NetworkScanner, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("l1scan: resolve udp addr %s: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("l1scan: listen udp %s: %w", addr, err)
	}
	if err := conn.SetReadBuffer(4 << 20); err != nil {
		// Non-fatal: some OSes clamp the buffer size.
		_ = err
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}

	return &NetworkScanner{
		conn:      conn,
		stepCount: params.StepCount,
		angStep:   params.AngularStepRadians,
		timeout:   timeout,
		buf:       make([]byte, 8+params.StepCount*4),
	}, nil
}

// NextScan reads the next scan packet, decoding a little-endian uint64
// nanosecond timestamp followed by stepCount little-endian uint32
// millimetre samples into metres.
func (n *NetworkScanner) NextScan() (Scan, error) {
	if n.closed {
		return Scan{}, ErrScannerClosed
	}

	if err := n.conn.SetReadDeadline(time.Now().Add(n.timeout)); err != nil {
		return Scan{}, fmt.Errorf("l1scan: set read deadline: %w", err)
	}

	read, _, err := n.conn.ReadFromUDP(n.buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return Scan{}, ErrScanTimeout
		}
		if n.closed {
			return Scan{}, ErrScannerClosed
		}
		return Scan{}, fmt.Errorf("l1scan: udp read: %w", err)
	}

	want := 8 + n.stepCount*4
	if read != want {
		return Scan{}, fmt.Errorf("l1scan: short packet: got %d bytes, want %d", read, want)
	}

	tsNanos := int64(binary.LittleEndian.Uint64(n.buf[0:8]))
	ranges := make([]float64, n.stepCount)
	for i := 0; i < n.stepCount; i++ {
		mm := binary.LittleEndian.Uint32(n.buf[8+i*4 : 12+i*4])
		ranges[i] = float64(mm) / 1000.0
	}

	return Scan{TimestampNanos: tsNanos, Ranges: ranges}, nil
}

// StepCount returns N.
func (n *NetworkScanner) StepCount() int { return n.stepCount }

// AngularStepRadians returns Δ.
func (n *NetworkScanner) AngularStepRadians() float64 { return n.angStep }

// Close closes the UDP socket.
func (n *NetworkScanner) Close() error {
	n.closed = true
	return n.conn.Close()
}

var _ Scanner = (*NetworkScanner)(nil)
