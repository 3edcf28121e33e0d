package remote

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lumentouch/touchcore/internal/observability"
	"github.com/lumentouch/touchcore/internal/touch/l7track"
)

func TestServer_StatsReportsAndResetsCounters(t *testing.T) {
	north := observability.NewPipelineStats()
	north.AddScan()
	north.AddScan()
	north.AddTouchEvents(1)

	srv := NewServer(AdaptStats(map[string]*observability.PipelineStats{"north": north}), nil)

	out, err := srv.Stats(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	fields := out.GetFields()["north"].GetStructValue().GetFields()
	require.Equal(t, float64(2), fields["scans"].GetNumberValue())
	require.Equal(t, float64(1), fields["touch_events_out"].GetNumberValue())

	out2, err := srv.Stats(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	fields2 := out2.GetFields()["north"].GetStructValue().GetFields()
	require.Equal(t, float64(0), fields2["scans"].GetNumberValue())
}

// fakeStreamEventsServer implements PipelineStatus_StreamEventsServer for
// tests, recording every sent message without a real network connection.
type fakeStreamEventsServer struct {
	ctx  context.Context
	mu   sync.Mutex
	sent []*structpb.Struct
}

func (f *fakeStreamEventsServer) Send(m *structpb.Struct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeStreamEventsServer) snapshot() []*structpb.Struct {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*structpb.Struct(nil), f.sent...)
}

func (f *fakeStreamEventsServer) Context() context.Context        { return f.ctx }
func (f *fakeStreamEventsServer) SetHeader(metadata.MD) error     { return nil }
func (f *fakeStreamEventsServer) SendHeader(metadata.MD) error    { return nil }
func (f *fakeStreamEventsServer) SetTrailer(metadata.MD)          {}
func (f *fakeStreamEventsServer) SendMsg(m interface{}) error     { return nil }
func (f *fakeStreamEventsServer) RecvMsg(m interface{}) error     { return nil }

func TestServer_StreamEventsRelaysThenStopsOnCancel(t *testing.T) {
	events := make(chan l7track.TouchEvent, 1)
	events <- l7track.TouchEvent{Kind: l7track.EventAdd, SessionID: 1, U: 0.5, V: 0.5}

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(AdaptStats(nil), events)
	stream := &fakeStreamEventsServer{ctx: ctx}

	done := make(chan error, 1)
	go func() {
		done <- srv.StreamEvents(&emptypb.Empty{}, stream)
	}()

	require.Eventually(t, func() bool { return len(stream.snapshot()) == 1 }, time.Second, time.Millisecond)
	cancel()
	require.Error(t, <-done)
	require.Equal(t, "ADD", stream.snapshot()[0].GetFields()["kind"].GetStringValue())
}
