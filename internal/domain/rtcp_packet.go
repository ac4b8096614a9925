package domain

import "time"

// RtcpPacketIncomingEvent captures a received RTCP packet. It is a runtime
// event: the history ages it out once the ring is full, and the persist
// filter may drop it entirely.
type RtcpPacketIncomingEvent struct {
	timestamp time.Time
	packet    []byte
}

// NewRtcpPacketIncoming copies packet into event-owned storage; the caller
// keeps ownership of its slice and may reuse it.
func NewRtcpPacketIncoming(packet []byte) *RtcpPacketIncomingEvent {
	return NewRtcpPacketIncomingAt(time.Now(), packet)
}

// NewRtcpPacketIncomingAt is the explicit-timestamp construction path.
func NewRtcpPacketIncomingAt(ts time.Time, packet []byte) *RtcpPacketIncomingEvent {
	owned := make([]byte, len(packet))
	copy(owned, packet)
	return &RtcpPacketIncomingEvent{timestamp: ts, packet: owned}
}

func (e *RtcpPacketIncomingEvent) Type() EventType { return EventTypeRtcpPacketIncoming }

func (e *RtcpPacketIncomingEvent) IsConfigEvent() bool { return false }

func (e *RtcpPacketIncomingEvent) Timestamp() time.Time { return e.timestamp }

// Packet exposes the owned bytes for read-only inspection.
func (e *RtcpPacketIncomingEvent) Packet() []byte { return e.packet }

func (e *RtcpPacketIncomingEvent) Copy() Event {
	return NewRtcpPacketIncomingAt(e.timestamp, e.packet)
}
