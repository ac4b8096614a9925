package scrub

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/user/rtc-event-log/internal/domain"
)

func rtcpRecord(t *testing.T, packet []byte) domain.Record {
	t.Helper()
	e := domain.NewRtcpPacketIncomingAt(time.UnixMicro(100), packet)
	rec, err := domain.NewRecord("s1", e)
	if err != nil {
		t.Fatalf("failed to build record: %v", err)
	}
	return rec
}

func TestScrubber_TruncatesOversizedRtcpPayload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScrubber(4, logger)

	packet := []byte{0x80, 0xc8, 0x00, 0x06, 0xaa, 0xbb, 0xcc}
	rec := rtcpRecord(t, packet)

	if err := s.Scrub(&rec); err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if !rec.Scrubbed {
		t.Error("expected Scrubbed flag to be set")
	}

	e, err := rec.Event()
	if err != nil {
		t.Fatalf("failed to decode scrubbed record: %v", err)
	}
	got := e.(*domain.RtcpPacketIncomingEvent).Packet()
	if !bytes.Equal(got, packet[:4]) {
		t.Errorf("scrubbed packet = %x, want %x", got, packet[:4])
	}
}

func TestScrubber_LeavesSmallPacketsAlone(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScrubber(64, logger)

	rec := rtcpRecord(t, []byte{0x80, 0xc9})
	original := string(rec.Payload)

	if err := s.Scrub(&rec); err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if rec.Scrubbed {
		t.Error("Scrubbed flag set for packet under the cap")
	}
	if string(rec.Payload) != original {
		t.Error("payload changed for packet under the cap")
	}
}

func TestScrubber_IgnoresConfigRecords(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScrubber(1, logger)

	e := domain.NewAudioSendStreamConfigAt(time.UnixMicro(100), &domain.StreamConfig{LocalSSRC: 42})
	rec, err := domain.NewRecord("s1", e)
	if err != nil {
		t.Fatalf("failed to build record: %v", err)
	}
	original := string(rec.Payload)

	if err := s.Scrub(&rec); err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if rec.Scrubbed || string(rec.Payload) != original {
		t.Error("config record was modified by the scrubber")
	}
}

func TestScrubber_DisabledCapIsNoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScrubber(0, logger)

	rec := rtcpRecord(t, bytes.Repeat([]byte{0xab}, 128))
	if err := s.Scrub(&rec); err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if rec.Scrubbed {
		t.Error("disabled scrubber still truncated the payload")
	}
}

func TestScrubber_BadPayloadReturnsError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScrubber(4, logger)

	rec := domain.Record{Type: "rtcp_packet_incoming", Payload: []byte(`{broken`)}
	if err := s.Scrub(&rec); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}
