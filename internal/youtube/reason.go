package youtube

// ReasonCode explains why a resolution or enumeration produced what it did.
// Only ReasonOK means the upstream answered; an enumeration can be ReasonOK
// and still carry zero videos.
type ReasonCode string

const (
	ReasonOK                ReasonCode = "ok"
	ReasonInvalidIdentifier ReasonCode = "invalid_identifier"
	ReasonUnresolved        ReasonCode = "unresolved"
	ReasonChannelNotFound   ReasonCode = "channel_not_found"
	ReasonNoUploads         ReasonCode = "no_uploads"
	ReasonUpstreamError     ReasonCode = "upstream_error"
)

func (r ReasonCode) OK() bool {
	return r == ReasonOK
}
