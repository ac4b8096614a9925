package domain

import (
	"bytes"
	"testing"
	"time"
)

func TestRecord_ConfigEventRoundTrip(t *testing.T) {
	ts := time.UnixMicro(1000)
	e := NewAudioSendStreamConfigAt(ts, testStreamConfig())

	rec, err := NewRecord("session-1", e)
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	if rec.Type != "audio_send_stream_config" {
		t.Errorf("record type = %q, want audio_send_stream_config", rec.Type)
	}
	if !rec.ConfigEvent {
		t.Error("record ConfigEvent = false, want true")
	}
	if rec.TimestampUS != 1000 {
		t.Errorf("record timestamp = %d, want 1000", rec.TimestampUS)
	}

	got, err := rec.Event()
	if err != nil {
		t.Fatalf("Event() failed: %v", err)
	}
	cfg, ok := got.(*AudioSendStreamConfigEvent)
	if !ok {
		t.Fatalf("Event() returned %T, want *AudioSendStreamConfigEvent", got)
	}
	if cfg.Config().LocalSSRC != 42 {
		t.Errorf("rehydrated LocalSSRC = %d, want 42", cfg.Config().LocalSSRC)
	}
	if !cfg.Timestamp().Equal(ts) {
		t.Errorf("rehydrated timestamp = %v, want %v", cfg.Timestamp(), ts)
	}
}

func TestRecord_RtcpEventRoundTrip(t *testing.T) {
	packet := []byte{0x80, 0xc9, 0x00, 0x01, 0xde, 0xad}
	e := NewRtcpPacketIncomingAt(time.UnixMicro(5000), packet)

	rec, err := NewRecord("session-2", e)
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	if rec.ConfigEvent {
		t.Error("record ConfigEvent = true, want false")
	}

	got, err := rec.Event()
	if err != nil {
		t.Fatalf("Event() failed: %v", err)
	}
	rtcp := got.(*RtcpPacketIncomingEvent)
	if !bytes.Equal(rtcp.Packet(), packet) {
		t.Errorf("rehydrated packet = %x, want %x", rtcp.Packet(), packet)
	}
}

func TestRecord_UnknownTypeRejected(t *testing.T) {
	rec := Record{Type: "ice_candidate_pair", Payload: []byte(`{}`)}
	if _, err := rec.Event(); err == nil {
		t.Fatal("expected error for unknown event type, got nil")
	}
}
