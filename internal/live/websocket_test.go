package live

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/intervu-ai/intervu/internal/coach"
	"github.com/intervu-ai/intervu/internal/domain"
)

func testStreamConfig() coach.StreamConfig {
	cfg := coach.DefaultStreamConfig()
	cfg.EmitInterval = time.Millisecond
	cfg.SustainWindow = time.Hour // keep quiet alerts out of these tests
	cfg.SpeechFrames = 1
	return cfg
}

func pcmFrame(amplitude int16, samples int) []byte {
	frame := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(amplitude))
	}
	return frame
}

func dialCoach(t *testing.T, cfg coach.StreamConfig) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(NewCoachHandler(cfg, "", true))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	ws, _, err := websocket.Dial(ctx, "ws"+srv.URL[4:], nil)
	if err != nil {
		cancel()
		srv.Close()
		t.Fatalf("Dial: %v", err)
	}

	return ws, func() {
		ws.Close(websocket.StatusNormalClosure, "done")
		cancel()
		srv.Close()
	}
}

func TestCoachStreamEmitsEvents(t *testing.T) {
	ws, done := dialCoach(t, testStreamConfig())
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frame := pcmFrame(16000, 320)
	for i := 0; i < 5; i++ {
		if err := ws.Write(ctx, websocket.MessageBinary, frame); err != nil {
			t.Fatalf("write frame: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, payload, err := ws.Read(ctx)
	if err != nil {
		t.Fatalf("read event: %v", err)
	}

	var event domain.StreamingCoachingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("unmarshal event: %v (payload %q)", err, payload)
	}
	if event.VolumeLevel <= 0 {
		t.Errorf("volume_level = %v, want > 0", event.VolumeLevel)
	}
}

func TestCoachStreamPing(t *testing.T) {
	ws, done := dialCoach(t, testStreamConfig())
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ws.Write(ctx, websocket.MessageText, []byte(`{"type": "ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	// The pong may interleave with coaching events; scan a few messages.
	for i := 0; i < 5; i++ {
		_, payload, err := ws.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg map[string]interface{}
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg["type"] == "pong" {
			return
		}
	}
	t.Fatal("never received pong")
}

func TestCoachStreamIgnoresMalformedControl(t *testing.T) {
	ws, done := dialCoach(t, testStreamConfig())
	defer done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ws.Write(ctx, websocket.MessageText, []byte("not json at all")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	// Connection must survive; a ping still gets a pong.
	if err := ws.Write(ctx, websocket.MessageText, []byte(`{"type": "ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if _, _, err := ws.Read(ctx); err != nil {
		t.Fatalf("read after garbage: %v", err)
	}
}
