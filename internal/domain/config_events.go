package domain

import "time"

// AudioSendStreamConfigEvent records the configuration of an audio send
// stream at the moment it became effective. The event is the sole owner of
// its StreamConfig from construction on.
type AudioSendStreamConfigEvent struct {
	timestamp time.Time
	config    *StreamConfig
}

// NewAudioSendStreamConfig takes ownership of cfg and stamps the event with
// the current time. The caller must not retain or mutate cfg afterwards.
func NewAudioSendStreamConfig(cfg *StreamConfig) *AudioSendStreamConfigEvent {
	return NewAudioSendStreamConfigAt(time.Now(), cfg)
}

// NewAudioSendStreamConfigAt is the explicit-timestamp construction path,
// used by producers that stamp events on the media clock and by the record
// decoder.
func NewAudioSendStreamConfigAt(ts time.Time, cfg *StreamConfig) *AudioSendStreamConfigEvent {
	return &AudioSendStreamConfigEvent{timestamp: ts, config: cfg}
}

func (e *AudioSendStreamConfigEvent) Type() EventType {
	return EventTypeAudioSendStreamConfig
}

func (e *AudioSendStreamConfigEvent) IsConfigEvent() bool { return true }

func (e *AudioSendStreamConfigEvent) Timestamp() time.Time { return e.timestamp }

// Config exposes the owned snapshot for read-only inspection.
func (e *AudioSendStreamConfigEvent) Config() *StreamConfig { return e.config }

// Copy deep-clones the owned config and carries the capture time forward.
func (e *AudioSendStreamConfigEvent) Copy() Event {
	return &AudioSendStreamConfigEvent{
		timestamp: e.timestamp,
		config:    e.config.Clone(),
	}
}

// VideoSendStreamConfigEvent is the video counterpart of
// AudioSendStreamConfigEvent; it shares the StreamConfig payload schema and
// differs only in its tag.
type VideoSendStreamConfigEvent struct {
	timestamp time.Time
	config    *StreamConfig
}

// NewVideoSendStreamConfig takes ownership of cfg and stamps the event with
// the current time.
func NewVideoSendStreamConfig(cfg *StreamConfig) *VideoSendStreamConfigEvent {
	return NewVideoSendStreamConfigAt(time.Now(), cfg)
}

// NewVideoSendStreamConfigAt is the explicit-timestamp construction path.
func NewVideoSendStreamConfigAt(ts time.Time, cfg *StreamConfig) *VideoSendStreamConfigEvent {
	return &VideoSendStreamConfigEvent{timestamp: ts, config: cfg}
}

func (e *VideoSendStreamConfigEvent) Type() EventType {
	return EventTypeVideoSendStreamConfig
}

func (e *VideoSendStreamConfigEvent) IsConfigEvent() bool { return true }

func (e *VideoSendStreamConfigEvent) Timestamp() time.Time { return e.timestamp }

func (e *VideoSendStreamConfigEvent) Config() *StreamConfig { return e.config }

func (e *VideoSendStreamConfigEvent) Copy() Event {
	return &VideoSendStreamConfigEvent{
		timestamp: e.timestamp,
		config:    e.config.Clone(),
	}
}
