// Package verifier orchestrates speaker enrollment and verification on top
// of a speaker-embedding encoder and a vector store.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/audio"
	"github.com/voxgateco/voxgate/pkg/embeddings"
	"github.com/voxgateco/voxgate/pkg/eventstream"
	"github.com/voxgateco/voxgate/pkg/vector"
)

const (
	// DefaultThreshold is the documented cosine similarity threshold for
	// verification.
	DefaultThreshold = 0.016

	// DefaultTopK is the number of nearest neighbors fetched during
	// verification.
	DefaultTopK = 10
)

var (
	// ErrAlreadyEnrolled is returned when enrolling a name that already has
	// a stored record.
	ErrAlreadyEnrolled = errors.New("speaker already enrolled")

	// ErrNoMatch is returned when verification finds no stored embeddings.
	ErrNoMatch = errors.New("no embedding found")

	// ErrEmptyName is returned when an enroll or verify request carries no
	// speaker name.
	ErrEmptyName = errors.New("speaker name is required")
)

// Verifier wires the embedding encoder, the vector store and the event
// publisher into the enroll/verify/clear workflow.
type Verifier struct {
	embedder  embeddings.Embedder
	store     vector.Driver
	events    eventstream.Publisher
	logger    *zap.Logger
	threshold float32
	topK      int
}

// Config holds verification tuning parameters.
type Config struct {
	// Threshold is the cosine similarity threshold reported with
	// verification results. Defaults to DefaultThreshold if zero.
	Threshold float32

	// TopK is the number of nearest neighbors fetched during verification.
	// Defaults to DefaultTopK if zero.
	TopK int
}

// NewVerifier creates a Verifier. The embedder, store and publisher are
// injected so they can be shared with other components.
func NewVerifier(cfg Config, embedder embeddings.Embedder, store vector.Driver, events eventstream.Publisher, logger *zap.Logger) *Verifier {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &Verifier{
		embedder:  embedder,
		store:     store,
		events:    events,
		logger:    logger,
		threshold: threshold,
		topK:      topK,
	}
}

// Enroll registers a new speaker from a voice clip. The duplicate check is a
// filtered existence query followed by an insert; concurrent enrollments of
// the same name can race past it.
func (v *Verifier) Enroll(ctx context.Context, clip *audio.Clip, name string) (*EnrollResult, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	v.logger.Info("enrolling speaker",
		zap.String("name", name),
		zap.String("audio", clip.Path),
	)

	embedding, err := v.embedder.Embed(ctx, clip)
	if err != nil {
		return nil, fmt.Errorf("embedding clip for %q: %w", name, err)
	}

	// Any stored record under this name rejects the enrollment, regardless
	// of its similarity score.
	existing, err := v.store.QueryByName(ctx, embedding, name, 1)
	if err != nil {
		return nil, fmt.Errorf("checking for existing speaker %q: %w", name, err)
	}
	if len(existing) > 0 {
		v.logger.Warn("speaker already enrolled", zap.String("name", name))
		return nil, fmt.Errorf("%w: %q", ErrAlreadyEnrolled, name)
	}

	speaker := vector.Speaker{
		ID:        uuid.NewString(),
		Name:      name,
		Embedding: embedding,
	}
	if err := v.store.Upsert(ctx, []vector.Speaker{speaker}); err != nil {
		return nil, fmt.Errorf("storing speaker %q: %w", name, err)
	}

	count, err := v.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting speakers: %w", err)
	}

	v.logger.Info("speaker enrolled",
		zap.String("name", name),
		zap.String("speaker_id", speaker.ID),
		zap.Uint64("enrolled", count),
	)

	v.publishEnrollment(ctx, speaker, count)

	return &EnrollResult{
		SpeakerID: speaker.ID,
		Name:      name,
		Enrolled:  count,
	}, nil
}

// Verify checks a claimed identity against the enrolled voices. Acceptance is
// name equality with the single global nearest neighbor; the configured
// similarity threshold is reported on the result but not applied as a gate,
// so a speaker outranked by an acoustically closer enrollee is rejected no
// matter how high their own score would be.
func (v *Verifier) Verify(ctx context.Context, clip *audio.Clip, claimedName string) (*VerifyResult, error) {
	if claimedName == "" {
		return nil, ErrEmptyName
	}

	v.logger.Info("verifying speaker",
		zap.String("claimed_name", claimedName),
		zap.String("audio", clip.Path),
	)

	embedding, err := v.embedder.Embed(ctx, clip)
	if err != nil {
		return nil, fmt.Errorf("embedding clip for %q: %w", claimedName, err)
	}

	matches, err := v.store.Query(ctx, embedding, v.topK)
	if err != nil {
		return nil, fmt.Errorf("querying speakers: %w", err)
	}

	if len(matches) == 0 {
		v.logger.Warn("no stored embeddings", zap.String("claimed_name", claimedName))
		return nil, fmt.Errorf("%w for %q", ErrNoMatch, claimedName)
	}

	top := matches[0]
	result := &VerifyResult{
		ClaimedName: claimedName,
		MatchedName: top.Name,
		Score:       top.Score,
		Threshold:   v.threshold,
		Verified:    top.Name == claimedName,
	}

	if result.Verified {
		v.logger.Info("verification successful",
			zap.String("claimed_name", claimedName),
			zap.Float32("similarity", top.Score),
		)
	} else {
		v.logger.Warn("verification failed",
			zap.String("claimed_name", claimedName),
			zap.String("matched_name", top.Name),
			zap.Float32("similarity", top.Score),
		)
	}

	v.publishVerification(ctx, result)

	return result, nil
}

// Speakers lists up to limit enrolled speakers.
func (v *Verifier) Speakers(ctx context.Context, limit int) ([]vector.Speaker, error) {
	return v.store.Scroll(ctx, limit)
}

// Count returns the number of enrolled speakers.
func (v *Verifier) Count(ctx context.Context) (uint64, error) {
	return v.store.Count(ctx)
}

// Clear irreversibly removes every enrolled speaker by recreating the
// collection.
func (v *Verifier) Clear(ctx context.Context) error {
	v.logger.Info("clearing collection")

	if err := v.store.Reset(ctx); err != nil {
		return fmt.Errorf("clearing collection: %w", err)
	}

	v.logger.Info("collection cleared")

	return nil
}

// publishEnrollment emits an enrollment event. Publishing is best-effort:
// failures are logged and never fail the user action.
func (v *Verifier) publishEnrollment(ctx context.Context, speaker vector.Speaker, count uint64) {
	event := &eventstream.SpeakerEnrolledEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeSpeakerEnrolled,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		SpeakerID:     speaker.ID,
		SpeakerName:   speaker.Name,
		Enrolled:      count,
	}

	if err := v.events.PublishEnrollment(ctx, event); err != nil {
		v.logger.Warn("failed to publish enrollment event",
			zap.String("name", speaker.Name),
			zap.Error(err),
		)
	}
}

// publishVerification emits a verification event, successful or not.
func (v *Verifier) publishVerification(ctx context.Context, result *VerifyResult) {
	event := &eventstream.SpeakerVerifiedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeSpeakerVerified,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		ClaimedName:   result.ClaimedName,
		MatchedName:   result.MatchedName,
		Score:         result.Score,
		Threshold:     result.Threshold,
		Verified:      result.Verified,
	}

	if err := v.events.PublishVerification(ctx, event); err != nil {
		v.logger.Warn("failed to publish verification event",
			zap.String("claimed_name", result.ClaimedName),
			zap.Error(err),
		)
	}
}
