package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/user/rtc-event-log/internal/domain"
)

func rtcpAt(us int64) *domain.RtcpPacketIncomingEvent {
	return domain.NewRtcpPacketIncomingAt(time.UnixMicro(us), []byte{0x80, byte(us)})
}

func TestEventLog_ConfigEventsSurviveRingEviction(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := NewEventLog(2, logger)

	cfg := domain.NewAudioSendStreamConfigAt(time.UnixMicro(10), &domain.StreamConfig{LocalSSRC: 42})
	log.Log("s1", cfg)

	evicted := 0
	for i := int64(20); i < 26; i++ {
		evicted += log.Log("s1", rtcpAt(i))
	}
	if evicted != 4 {
		t.Errorf("evicted = %d, want 4 (ring capacity 2, 6 runtime events)", evicted)
	}

	snap := log.Snapshot("s1")
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3 (1 config + 2 recent)", len(snap))
	}
	if !snap[0].IsConfigEvent() {
		t.Error("snapshot does not start with the config event")
	}
	// The two newest runtime events must remain, oldest first.
	if snap[1].Timestamp().UnixMicro() != 24 || snap[2].Timestamp().UnixMicro() != 25 {
		t.Errorf("retained runtime timestamps = %d, %d; want 24, 25",
			snap[1].Timestamp().UnixMicro(), snap[2].Timestamp().UnixMicro())
	}
}

func TestEventLog_SnapshotOrdersConfigsByCaptureTime(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := NewEventLog(10, logger)

	log.Log("s1", domain.NewVideoSendStreamConfigAt(time.UnixMicro(200), &domain.StreamConfig{LocalSSRC: 2}))
	log.Log("s1", domain.NewAudioSendStreamConfigAt(time.UnixMicro(100), &domain.StreamConfig{LocalSSRC: 1}))

	snap := log.Snapshot("s1")
	if len(snap) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(snap))
	}
	if snap[0].Timestamp().UnixMicro() != 100 {
		t.Errorf("first config timestamp = %d, want 100", snap[0].Timestamp().UnixMicro())
	}
}

func TestEventLog_SnapshotReturnsIndependentCopies(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := NewEventLog(10, logger)

	original := domain.NewAudioSendStreamConfigAt(time.UnixMicro(10), &domain.StreamConfig{LocalSSRC: 42})
	log.Log("s1", original)

	snap1 := log.Snapshot("s1")
	snap2 := log.Snapshot("s1")

	e1 := snap1[0].(*domain.AudioSendStreamConfigEvent)
	e2 := snap2[0].(*domain.AudioSendStreamConfigEvent)
	if e1 == e2 {
		t.Fatal("two snapshots returned the same event instance")
	}
	if e1.Config() == e2.Config() || e1.Config() == original.Config() {
		t.Fatal("snapshot events share payload storage")
	}
	if e1.Config().LocalSSRC != 42 || e2.Config().LocalSSRC != 42 {
		t.Error("snapshot payload content does not match the original")
	}
}

func TestEventLog_SessionsIsolatedAndDroppable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := NewEventLog(10, logger)

	log.Log("s1", rtcpAt(1))
	log.Log("s2", rtcpAt(2))

	if got := log.Sessions(); len(got) != 2 {
		t.Fatalf("sessions = %v, want 2 entries", got)
	}

	log.DropSession("s1")
	if snap := log.Snapshot("s1"); snap != nil {
		t.Errorf("snapshot after drop = %v, want nil", snap)
	}
	if snap := log.Snapshot("s2"); len(snap) != 1 {
		t.Errorf("s2 snapshot length = %d, want 1", len(snap))
	}
}

func TestEventLog_UnknownSessionSnapshotIsNil(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := NewEventLog(10, logger)
	if snap := log.Snapshot("nope"); snap != nil {
		t.Errorf("snapshot = %v, want nil", snap)
	}
}
