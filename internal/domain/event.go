package domain

import "time"

// EventType identifies the concrete kind of a captured event. The set is
// closed: the decoder and the persist filter both refuse tags they do not
// know about.
type EventType int

const (
	EventTypeUnknown EventType = iota
	EventTypeAudioSendStreamConfig
	EventTypeVideoSendStreamConfig
	EventTypeRtcpPacketIncoming
)

// String returns the stable wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventTypeAudioSendStreamConfig:
		return "audio_send_stream_config"
	case EventTypeVideoSendStreamConfig:
		return "video_send_stream_config"
	case EventTypeRtcpPacketIncoming:
		return "rtcp_packet_incoming"
	default:
		return "unknown"
	}
}

// ParseEventType maps a wire name back to its tag. Unrecognized names yield
// EventTypeUnknown.
func ParseEventType(s string) EventType {
	switch s {
	case "audio_send_stream_config":
		return EventTypeAudioSendStreamConfig
	case "video_send_stream_config":
		return EventTypeVideoSendStreamConfig
	case "rtcp_packet_incoming":
		return EventTypeRtcpPacketIncoming
	default:
		return EventTypeUnknown
	}
}

// Event is the contract every loggable occurrence satisfies so the pipeline
// can store, filter, and duplicate heterogeneous kinds through one surface.
//
// Instances are immutable once constructed. Type and IsConfigEvent are fixed
// per concrete variant and never vary across calls. No method blocks or
// performs I/O; an Event and its copies may be read concurrently without
// locking because they share no mutable state.
type Event interface {
	// Type returns the fixed tag of the concrete variant.
	Type() EventType

	// IsConfigEvent reports whether the event is a configuration snapshot
	// rather than a runtime occurrence. Config events are retained by the
	// history for the life of their session instead of aging out.
	IsConfigEvent() bool

	// Timestamp is the capture time, set once at construction. Copies carry
	// the original capture time, not the time of duplication.
	Timestamp() time.Time

	// Copy returns a new, independently owned structural duplicate. Mutating
	// or dropping either side never affects the other, including any owned
	// nested payload.
	Copy() Event
}
