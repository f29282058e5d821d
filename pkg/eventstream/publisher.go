// Package eventstream publishes enrollment and verification outcomes to an
// event stream backend.
package eventstream

import "context"

// Publisher publishes speaker events to an event stream backend.
type Publisher interface {
	PublishEnrollment(ctx context.Context, event *SpeakerEnrolledEvent) error
	PublishVerification(ctx context.Context, event *SpeakerVerifiedEvent) error
	Close() error
}
