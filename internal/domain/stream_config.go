package domain

// RTCPMode mirrors the negotiated RTCP feedback mode of a stream.
type RTCPMode string

const (
	RTCPModeCompound    RTCPMode = "compound"
	RTCPModeReducedSize RTCPMode = "reduced_size"
)

// HeaderExtension is one negotiated RTP header extension (id + URI).
type HeaderExtension struct {
	ID  int    `json:"id"`
	URI string `json:"uri"`
}

// Codec describes one negotiated codec mapping on a stream.
type Codec struct {
	PayloadName    string `json:"payload_name"`
	PayloadType    int    `json:"payload_type"`
	RTXPayloadType int    `json:"rtx_payload_type,omitempty"`
}

// StreamConfig is a self-contained snapshot of a media send stream's setup,
// captured at the instant the configuration became effective. It holds no
// references into live pipeline state: a configuration event must stay
// readable after the stream it describes is renegotiated or torn down.
type StreamConfig struct {
	LocalSSRC  uint32            `json:"local_ssrc"`
	RemoteSSRC uint32            `json:"remote_ssrc,omitempty"`
	RTXSSRC    uint32            `json:"rtx_ssrc,omitempty"`
	RTCPMode   RTCPMode          `json:"rtcp_mode,omitempty"`
	REMB       bool              `json:"remb,omitempty"`
	Extensions []HeaderExtension `json:"extensions,omitempty"`
	Codecs     []Codec           `json:"codecs,omitempty"`
}

// Clone returns a structural deep copy with freshly allocated slices. Event
// duplication delegates payload copying to this method.
func (c *StreamConfig) Clone() *StreamConfig {
	if c == nil {
		return nil
	}
	dup := *c
	if c.Extensions != nil {
		dup.Extensions = make([]HeaderExtension, len(c.Extensions))
		copy(dup.Extensions, c.Extensions)
	}
	if c.Codecs != nil {
		dup.Codecs = make([]Codec, len(c.Codecs))
		copy(dup.Codecs, c.Codecs)
	}
	return &dup
}
