package nop

import (
	"context"

	"github.com/voxgateco/voxgate/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishEnrollment validates input and otherwise does nothing.
func (p *Publisher) PublishEnrollment(_ context.Context, event *eventstream.SpeakerEnrolledEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// PublishVerification validates input and otherwise does nothing.
func (p *Publisher) PublishVerification(_ context.Context, event *eventstream.SpeakerVerifiedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
