package redis

import (
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestNewPendingSummary(t *testing.T) {
	pending := &redis.XPending{
		Count:  3,
		Lower:  "1609459200000-0",
		Higher: "1609459260000-2",
		Consumers: map[string]int64{
			"archiver-a": 2,
			"archiver-b": 1,
		},
	}

	summary := newPendingSummary(pending)

	if summary.Total != 3 {
		t.Errorf("expected total 3, got %d", summary.Total)
	}
	if summary.FirstMessageID != "1609459200000-0" {
		t.Errorf("expected first message ID %q, got %q", "1609459200000-0", summary.FirstMessageID)
	}
	if summary.LastMessageID != "1609459260000-2" {
		t.Errorf("expected last message ID %q, got %q", "1609459260000-2", summary.LastMessageID)
	}
	if got := summary.ConsumerTotals["archiver-a"]; got != 2 {
		t.Errorf("expected 2 pending for archiver-a, got %d", got)
	}
}
