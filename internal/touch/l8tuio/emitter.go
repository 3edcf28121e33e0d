package l8tuio

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

// Endpoint is one TUIO UDP destination, subscribed to a single screen
// (spec.md §4.8's "(host, port, screen_id) triples").
type Endpoint struct {
	Host     string
	Port     int
	ScreenID int
}

func (e Endpoint) address() string { return fmt.Sprintf("%s:%d", e.Host, e.Port) }

// endpointState is the emitter's per-endpoint bookkeeping: its dialed
// socket, the content of the last bundle actually sent (so unchanged
// frames can be suppressed down to the heartbeat rate), and its own
// monotonic fseq counter.
type endpointState struct {
	endpoint Endpoint
	conn     *net.UDPConn

	sourceSent    bool
	lastAliveIDs  []uint32
	lastTouches   map[uint32]l7track.Touch
	lastSentNanos int64
	fseq          int32
}

// Emitter is the global Layer 8 component: it owns every configured
// endpoint and renders each screen's tracker output into TUIO bundles,
// fanning them out over UDP (spec.md §4.8). A single Emitter serves every
// screen in the pipeline; it has no goroutine of its own, and each screen
// worker calls EmitScreenFrame directly for its own screen.
type Emitter struct {
	appName           string
	hostName          string
	heartbeatInterval time.Duration
	writeTimeout      time.Duration

	endpoints []*endpointState
}

// NewEmitter creates an Emitter. appName and hostName fill the `source`
// message's `<app_name>@<host>` identity. heartbeatInterval is the longest
// an endpoint may go without a bundle even when nothing changed (spec.md
// §6's "heartbeat interval" config field); writeTimeout bounds each UDP
// send (spec.md §5's "blocking UDP send with a 10 ms soft timeout").
func NewEmitter(appName, hostName string, heartbeatInterval, writeTimeout time.Duration) *Emitter {
	return &Emitter{
		appName:           appName,
		hostName:          hostName,
		heartbeatInterval: heartbeatInterval,
		writeTimeout:      writeTimeout,
	}
}

// AddEndpoint dials a UDP socket for endpoint and registers it with the
// emitter. Grounded on the teacher corpus's network.PacketForwarder, which
// dials once at construction and reuses the connection for every send.
func (e *Emitter) AddEndpoint(endpoint Endpoint) error {
	addr, err := net.ResolveUDPAddr("udp", endpoint.address())
	if err != nil {
		return fmt.Errorf("l8tuio: resolve endpoint %s: %w", endpoint.address(), err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return fmt.Errorf("l8tuio: dial endpoint %s: %w", endpoint.address(), err)
	}
	e.endpoints = append(e.endpoints, &endpointState{
		endpoint:    endpoint,
		conn:        conn,
		lastTouches: make(map[uint32]l7track.Touch),
		fseq:        -1, // first send uses 0
	})
	return nil
}

// EmitScreenFrame sends one frame to every endpoint subscribed to
// screenID. touches must already be limited to confirmed Touches on that
// screen. nowNanos drives both the "unchanged" comparison and the
// heartbeat deadline. UDP send failures are logged and non-fatal; the
// endpoint is retained for the next frame (spec.md §4.8, §7).
func (e *Emitter) EmitScreenFrame(screenID int, touches []l7track.Touch, nowNanos int64) {
	for _, state := range e.endpoints {
		if state.endpoint.ScreenID != screenID {
			continue
		}
		e.emitToEndpoint(state, touches, nowNanos)
	}
}

func (e *Emitter) emitToEndpoint(state *endpointState, touches []l7track.Touch, nowNanos int64) {
	aliveIDs := make([]uint32, 0, len(touches))
	for _, t := range touches {
		aliveIDs = append(aliveIDs, t.SessionID)
	}

	changed := !state.sourceSent || aliveSetChanged(state.lastAliveIDs, aliveIDs) || touchesChanged(state.lastTouches, touches)
	elapsed := time.Duration(nowNanos-state.lastSentNanos) * time.Nanosecond
	if !changed && state.sourceSent && elapsed < e.heartbeatInterval {
		return
	}

	includeSource := !state.sourceSent || aliveSetChanged(state.lastAliveIDs, aliveIDs)
	state.fseq++

	bundles, err := buildFrameBundles(e.appName, e.hostName, includeSource, aliveIDs, touches, state.fseq, MaxDatagramBytes)
	if err != nil {
		log.Printf("l8tuio: endpoint %s: building bundle: %v", state.endpoint.address(), err)
		return
	}

	for _, bundle := range bundles {
		if err := state.conn.SetWriteDeadline(time.Now().Add(e.writeTimeout)); err != nil {
			log.Printf("l8tuio: endpoint %s: set write deadline: %v", state.endpoint.address(), err)
			continue
		}
		if _, err := state.conn.Write(bundle); err != nil {
			log.Printf("l8tuio: endpoint %s: send failed: %v", state.endpoint.address(), err)
			continue
		}
	}

	state.sourceSent = true
	state.lastAliveIDs = aliveIDs
	state.lastTouches = snapshotTouches(touches)
	state.lastSentNanos = nowNanos
}

// Shutdown sends one final bundle per endpoint with an empty alive list
// (spec.md §5's drain-and-exit requirement), then closes every socket.
func (e *Emitter) Shutdown() {
	for _, state := range e.endpoints {
		state.fseq++
		bundles, err := buildFrameBundles(e.appName, e.hostName, false, nil, nil, state.fseq, MaxDatagramBytes)
		if err == nil {
			for _, bundle := range bundles {
				_ = state.conn.SetWriteDeadline(time.Now().Add(e.writeTimeout))
				_, _ = state.conn.Write(bundle)
			}
		}
		_ = state.conn.Close()
	}
}

func aliveSetChanged(prev, next []uint32) bool {
	if len(prev) != len(next) {
		return true
	}
	for i := range prev {
		if prev[i] != next[i] {
			return true
		}
	}
	return false
}

func touchesChanged(prev map[uint32]l7track.Touch, next []l7track.Touch) bool {
	if len(prev) != len(next) {
		return true
	}
	for _, t := range next {
		old, ok := prev[t.SessionID]
		if !ok || old.U != t.U || old.V != t.V || old.DU != t.DU || old.DV != t.DV {
			return true
		}
	}
	return false
}

func snapshotTouches(touches []l7track.Touch) map[uint32]l7track.Touch {
	snap := make(map[uint32]l7track.Touch, len(touches))
	for _, t := range touches {
		snap[t.SessionID] = t
	}
	return snap
}
