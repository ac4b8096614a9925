package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the interchange envelope that carries an Event across process
// boundaries: collector HTTP body, WAL lines, Redis stream entries, and the
// archive sink all speak this shape. The envelope owns an encoded copy of
// the event payload; the in-memory Event it was built from stays untouched.
type Record struct {
	ID          string          `json:"record_id"`
	SessionID   string          `json:"session_id"`
	ReceivedAt  time.Time       `json:"received_at"`
	Type        string          `json:"type"`
	ConfigEvent bool            `json:"config_event"`
	TimestampUS int64           `json:"timestamp_us"`
	Payload     json.RawMessage `json:"payload"`
	Scrubbed    bool            `json:"scrubbed,omitempty"`

	// StreamMessageID is buffer bookkeeping set when the record is read back
	// from the stream; it is never persisted to the sink.
	StreamMessageID string `json:"-"`
}

type rtcpPacketPayload struct {
	Packet []byte `json:"packet"`
}

// NewRecord encodes an event into a wire envelope for the given session.
// The record ID and ReceivedAt are left for the ingest path to stamp.
func NewRecord(sessionID string, e Event) (Record, error) {
	var (
		payload []byte
		err     error
	)
	switch ev := e.(type) {
	case *AudioSendStreamConfigEvent:
		payload, err = json.Marshal(ev.Config())
	case *VideoSendStreamConfigEvent:
		payload, err = json.Marshal(ev.Config())
	case *RtcpPacketIncomingEvent:
		payload, err = json.Marshal(rtcpPacketPayload{Packet: ev.Packet()})
	default:
		return Record{}, fmt.Errorf("cannot encode event of type %s", e.Type())
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return Record{
		SessionID:   sessionID,
		Type:        e.Type().String(),
		ConfigEvent: e.IsConfigEvent(),
		TimestampUS: e.Timestamp().UnixMicro(),
		Payload:     payload,
	}, nil
}

// Event rehydrates the concrete event variant from the envelope. Records
// carrying an unknown type tag are rejected rather than guessed at.
func (r Record) Event() (Event, error) {
	ts := time.UnixMicro(r.TimestampUS)

	switch ParseEventType(r.Type) {
	case EventTypeAudioSendStreamConfig:
		var cfg StreamConfig
		if err := json.Unmarshal(r.Payload, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stream config payload: %w", err)
		}
		return NewAudioSendStreamConfigAt(ts, &cfg), nil
	case EventTypeVideoSendStreamConfig:
		var cfg StreamConfig
		if err := json.Unmarshal(r.Payload, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stream config payload: %w", err)
		}
		return NewVideoSendStreamConfigAt(ts, &cfg), nil
	case EventTypeRtcpPacketIncoming:
		var p rtcpPacketPayload
		if err := json.Unmarshal(r.Payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rtcp packet payload: %w", err)
		}
		return NewRtcpPacketIncomingAt(ts, p.Packet), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", r.Type)
	}
}
