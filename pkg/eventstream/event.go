package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSpeakerEnrolled is emitted after a speaker is enrolled.
	EventTypeSpeakerEnrolled = "voxgate.speaker.enrolled"

	// EventTypeSpeakerVerified is emitted after a verification attempt,
	// whether it succeeded or not.
	EventTypeSpeakerVerified = "voxgate.speaker.verified"
)

// SpeakerEnrolledEvent is a transport-neutral event payload for a completed
// enrollment.
type SpeakerEnrolledEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	SpeakerID   string `json:"speaker_id"`
	SpeakerName string `json:"speaker_name"`
	Enrolled    uint64 `json:"enrolled"`
}

// SpeakerVerifiedEvent is a transport-neutral event payload for a
// verification attempt.
type SpeakerVerifiedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	ClaimedName string  `json:"claimed_name"`
	MatchedName string  `json:"matched_name,omitempty"`
	Score       float32 `json:"score"`
	Threshold   float32 `json:"threshold"`
	Verified    bool    `json:"verified"`
}
