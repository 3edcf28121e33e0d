package l1scan

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// serialFrameHeader is the 2-byte sync pattern a USB-serial planar scanner
// prefixes every sweep with, matching the RPLidar-class wire format this
// scanner targets: 0xA5 0x5A followed by a little-endian uint16 sample
// count, a little-endian int64 nanosecond timestamp, and stepCount
// little-endian uint32 ranges, in millimetres.
var serialFrameHeader = [2]byte{0xA5, 0x5A}

// SerialScanner reads scan frames from a USB-serial planar LiDAR. It is
// grounded on the teacher corpus's go.bug.st/serial wiring (serial.Open with
// an explicit serial.Mode), adapted from line-oriented radar telemetry to
// framed binary sweeps.
type SerialScanner struct {
	port      serial.Port
	reader    *bufio.Reader
	stepCount int
	angStep   float64
	timeout   time.Duration

	mu     sync.Mutex
	closed bool
}

// OpenSerialScanner opens portName (e.g. "/dev/ttyUSB0") at the scanner's
// fixed baud rate and returns a Scanner streaming stepCount-sample sweeps.
func OpenSerialScanner(portName string, params Params) (*SerialScanner, error) {
	mode := &serial.Mode{
		BaudRate: 256000,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("l1scan: open serial port %s: %w", portName, err)
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("l1scan: set read timeout: %w", err)
	}

	return &SerialScanner{
		port:      port,
		reader:    bufio.NewReaderSize(port, 64*1024),
		stepCount: params.StepCount,
		angStep:   params.AngularStepRadians,
		timeout:   timeout,
	}, nil
}

// NextScan reads one framed sweep, converting millimetre samples to metres.
func (s *SerialScanner) NextScan() (Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Scan{}, ErrScannerClosed
	}

	if !s.syncToHeader() {
		return Scan{}, ErrScanTimeout
	}

	var count uint16
	if err := binary.Read(s.reader, binary.LittleEndian, &count); err != nil {
		return Scan{}, s.classifyReadErr(err)
	}
	if int(count) != s.stepCount {
		return Scan{}, fmt.Errorf("l1scan: frame declared %d samples, want %d", count, s.stepCount)
	}

	var tsNanos int64
	if err := binary.Read(s.reader, binary.LittleEndian, &tsNanos); err != nil {
		return Scan{}, s.classifyReadErr(err)
	}

	ranges := make([]float64, s.stepCount)
	for i := 0; i < s.stepCount; i++ {
		var mm uint32
		if err := binary.Read(s.reader, binary.LittleEndian, &mm); err != nil {
			return Scan{}, s.classifyReadErr(err)
		}
		ranges[i] = float64(mm) / 1000.0 // mm -> m at the hardware boundary
	}

	return Scan{TimestampNanos: tsNanos, Ranges: ranges}, nil
}

// syncToHeader scans the stream for the 2-byte header, returning false on
// timeout/EOF.
func (s *SerialScanner) syncToHeader() bool {
	var window [2]byte
	for {
		b, err := s.reader.ReadByte()
		if err != nil {
			return false
		}
		window[0], window[1] = window[1], b
		if window == serialFrameHeader {
			return true
		}
	}
}

func (s *SerialScanner) classifyReadErr(err error) error {
	if err == io.EOF {
		return ErrScanTimeout
	}
	if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
		return ErrScanTimeout
	}
	return fmt.Errorf("l1scan: serial read: %w", err)
}

// StepCount returns N.
func (s *SerialScanner) StepCount() int { return s.stepCount }

// AngularStepRadians returns Δ.
func (s *SerialScanner) AngularStepRadians() float64 { return s.angStep }

// Close closes the underlying serial port.
func (s *SerialScanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}

var _ Scanner = (*SerialScanner)(nil)
