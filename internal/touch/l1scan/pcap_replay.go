//go:build pcap
// +build pcap

package l1scan

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
)

// PCAPReplayScanner replays scan packets recorded in a capture file,
// matching the teacher corpus's offline-replay pattern (build-tagged
// because it links libpcap via cgo, same as internal/lidar/network's
// pcap.go/pcap_realtime.go).
type PCAPReplayScanner struct {
	handle    *pcap.Handle
	source    *gopacket.PacketSource
	udpPort   int
	stepCount int
	angStep   float64
	closed    bool
}

// OpenPCAPReplayScanner opens filename and filters for UDP scan traffic on
// udpPort.
func OpenPCAPReplayScanner(filename string, udpPort int, params Params) (*PCAPReplayScanner, error) {
	handle, err := pcap.OpenOffline(filename)
	if err != nil {
		return nil, fmt.Errorf("l1scan: open pcap %s: %w", filename, err)
	}

	filter := fmt.Sprintf("udp port %d", udpPort)
	if err := handle.SetBPFFilter(filter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("l1scan: set bpf filter %q: %w", filter, err)
	}

	return &PCAPReplayScanner{
		handle:    handle,
		source:    gopacket.NewPacketSource(handle, handle.LinkType()),
		udpPort:   udpPort,
		stepCount: params.StepCount,
		angStep:   params.AngularStepRadians,
	}, nil
}

// NextScan decodes the next UDP packet's payload into a Scan. Returns
// ErrScanTimeout at end of file, matching the live-scanner contract so
// pipeline code does not need to special-case replay.
func (p *PCAPReplayScanner) NextScan() (Scan, error) {
	if p.closed {
		return Scan{}, ErrScannerClosed
	}

	for packet := range p.source.Packets() {
		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		udp, ok := udpLayer.(*layers.UDP)
		if !ok {
			continue
		}

		payload := udp.Payload
		want := 8 + p.stepCount*4
		if len(payload) != want {
			continue
		}

		tsNanos := int64(binary.LittleEndian.Uint64(payload[0:8]))
		ranges := make([]float64, p.stepCount)
		for i := 0; i < p.stepCount; i++ {
			mm := binary.LittleEndian.Uint32(payload[8+i*4 : 12+i*4])
			ranges[i] = float64(mm) / 1000.0
		}
		return Scan{TimestampNanos: tsNanos, Ranges: ranges}, nil
	}

	return Scan{}, ErrScanTimeout
}

// StepCount returns N.
func (p *PCAPReplayScanner) StepCount() int { return p.stepCount }

// AngularStepRadians returns Δ.
func (p *PCAPReplayScanner) AngularStepRadians() float64 { return p.angStep }

// Close releases the pcap handle.
func (p *PCAPReplayScanner) Close() error {
	p.closed = true
	p.handle.Close()
	return nil
}

var _ Scanner = (*PCAPReplayScanner)(nil)
