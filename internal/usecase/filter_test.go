package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/rtc-event-log/internal/domain"
)

func writeFilterFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filter.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write filter file: %v", err)
	}
	return path
}

func TestLoadPersistFilter_EmptyPathKeepsEverything(t *testing.T) {
	f, err := LoadPersistFilter("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f != nil {
		t.Fatalf("expected nil filter, got %+v", f)
	}
	if !f.Keep(domain.Record{Type: "rtcp_packet_incoming"}) {
		t.Error("nil filter must keep every record")
	}
}

func TestLoadPersistFilter_AllowlistAndConfigOverride(t *testing.T) {
	path := writeFilterFile(t, "types:\n  - rtcp_packet_incoming\n")
	f, err := LoadPersistFilter(path)
	if err != nil {
		t.Fatalf("LoadPersistFilter failed: %v", err)
	}

	if !f.Keep(domain.Record{Type: "rtcp_packet_incoming"}) {
		t.Error("allowlisted type was dropped")
	}
	// config_events_always defaults to true.
	if !f.Keep(domain.Record{Type: "audio_send_stream_config", ConfigEvent: true}) {
		t.Error("config event was dropped despite the default override")
	}
}

func TestLoadPersistFilter_ConfigOverrideDisabled(t *testing.T) {
	path := writeFilterFile(t, "types:\n  - rtcp_packet_incoming\nconfig_events_always: false\n")
	f, err := LoadPersistFilter(path)
	if err != nil {
		t.Fatalf("LoadPersistFilter failed: %v", err)
	}
	if f.Keep(domain.Record{Type: "audio_send_stream_config", ConfigEvent: true}) {
		t.Error("config event kept although the override is disabled and the type is not allowlisted")
	}
}

func TestLoadPersistFilter_UnknownTypeRejected(t *testing.T) {
	path := writeFilterFile(t, "types:\n  - dtls_handshake\n")
	if _, err := LoadPersistFilter(path); err == nil {
		t.Fatal("expected error for unknown event type, got nil")
	}
}

func TestLoadPersistFilter_MissingFile(t *testing.T) {
	if _, err := LoadPersistFilter(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
