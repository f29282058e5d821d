package testutils

import (
	"context"

	"github.com/voxgateco/voxgate/pkg/eventstream"
)

// RecordingPublisher is a test publisher that records published events.
type RecordingPublisher struct {
	Enrollments   []*eventstream.SpeakerEnrolledEvent
	Verifications []*eventstream.SpeakerVerifiedEvent

	// Err is returned from every publish call when set
	Err error
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) PublishEnrollment(_ context.Context, event *eventstream.SpeakerEnrolledEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.Enrollments = append(p.Enrollments, event)
	return nil
}

func (p *RecordingPublisher) PublishVerification(_ context.Context, event *eventstream.SpeakerVerifiedEvent) error {
	if p.Err != nil {
		return p.Err
	}
	p.Verifications = append(p.Verifications, event)
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}
