package scrub

import (
	"fmt"
	"log/slog"

	"github.com/user/rtc-event-log/internal/domain"
)

// Scrubber truncates captured RTCP packet payloads to a configured byte cap
// before they are buffered, so full media-plane packets never reach the log.
// Configuration snapshots pass through untouched.
type Scrubber struct {
	maxPacketBytes int
	logger         *slog.Logger
}

// NewScrubber creates a Scrubber. maxPacketBytes <= 0 disables truncation.
func NewScrubber(maxPacketBytes int, logger *slog.Logger) *Scrubber {
	return &Scrubber{
		maxPacketBytes: maxPacketBytes,
		logger:         logger,
	}
}

// Scrub modifies the record in place, replacing an oversized RTCP payload
// with its truncated prefix and setting the Scrubbed flag. It returns an
// error if the payload cannot be decoded.
func (s *Scrubber) Scrub(rec *domain.Record) error {
	if s.maxPacketBytes <= 0 {
		return nil
	}
	if domain.ParseEventType(rec.Type) != domain.EventTypeRtcpPacketIncoming {
		return nil
	}

	e, err := rec.Event()
	if err != nil {
		return fmt.Errorf("failed to decode rtcp record for scrubbing: %w", err)
	}
	rtcp := e.(*domain.RtcpPacketIncomingEvent)
	if len(rtcp.Packet()) <= s.maxPacketBytes {
		return nil
	}

	truncated := domain.NewRtcpPacketIncomingAt(rtcp.Timestamp(), rtcp.Packet()[:s.maxPacketBytes])
	replacement, err := domain.NewRecord(rec.SessionID, truncated)
	if err != nil {
		return fmt.Errorf("failed to re-encode scrubbed rtcp record: %w", err)
	}

	s.logger.Debug("truncated rtcp packet payload",
		"record_id", rec.ID,
		"original_bytes", len(rtcp.Packet()),
		"kept_bytes", s.maxPacketBytes,
	)
	rec.Payload = replacement.Payload
	rec.Scrubbed = true
	return nil
}
