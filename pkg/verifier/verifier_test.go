package verifier_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/audio"
	testutils "github.com/voxgateco/voxgate/pkg/utils/test"
	"github.com/voxgateco/voxgate/pkg/vector/inmemory"
	"github.com/voxgateco/voxgate/pkg/verifier"
)

func TestVerifier(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Verifier Suite")
}

func clip(path string) *audio.Clip {
	return &audio.Clip{Path: path, Data: []byte("wav"), SampleRate: 16000}
}

var _ = Describe("Verifier", func() {
	var (
		v        *verifier.Verifier
		embedder *testutils.MockEmbedder
		store    *inmemory.Driver
		events   *testutils.RecordingPublisher
		ctx      context.Context
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		embedder.Embeddings["alice.wav"] = []float32{1, 0, 0}
		embedder.Embeddings["alice2.wav"] = []float32{0.95, 0.05, 0}
		embedder.Embeddings["bob.wav"] = []float32{0, 1, 0}

		store = inmemory.NewDriver()
		events = testutils.NewRecordingPublisher()
		v = verifier.NewVerifier(verifier.Config{}, embedder, store, events, zap.NewNop())
		ctx = context.Background()
	})

	Describe("Enroll", func() {
		It("enrolls a new speaker and reports the stored count", func() {
			result, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Name).To(Equal("Alice"))
			Expect(result.SpeakerID).NotTo(BeEmpty())
			Expect(result.Enrolled).To(Equal(uint64(1)))
			Expect(result.Message()).To(ContainSubstring("✅ Speaker 'Alice' enrolled"))
		})

		It("increments the count with each new speaker", func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())

			result, err := v.Enroll(ctx, clip("bob.wav"), "Bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Enrolled).To(Equal(uint64(2)))
		})

		It("rejects a name that already has a record, regardless of audio", func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())

			// Different audio, same name.
			_, err = v.Enroll(ctx, clip("bob.wav"), "Alice")
			Expect(err).To(MatchError(verifier.ErrAlreadyEnrolled))

			count, err := store.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(uint64(1)))
		})

		It("rejects an empty name", func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "")
			Expect(err).To(MatchError(verifier.ErrEmptyName))
		})

		It("propagates embedder failures", func() {
			embedder.FailOn = "broken.wav"
			_, err := v.Enroll(ctx, clip("broken.wav"), "Alice")
			Expect(err).To(HaveOccurred())
		})

		It("publishes an enrollment event", func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())

			Expect(events.Enrollments).To(HaveLen(1))
			Expect(events.Enrollments[0].SpeakerName).To(Equal("Alice"))
			Expect(events.Enrollments[0].Enrolled).To(Equal(uint64(1)))
		})

		It("succeeds even when event publishing fails", func() {
			events.Err = context.DeadlineExceeded

			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Verify", func() {
		BeforeEach(func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = v.Enroll(ctx, clip("bob.wav"), "Bob")
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepts a claim whose nearest neighbor carries the claimed name", func() {
			result, err := v.Verify(ctx, clip("alice2.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Verified).To(BeTrue())
			Expect(result.MatchedName).To(Equal("Alice"))
			Expect(result.Message()).To(ContainSubstring("✅ Verified as 'Alice'"))
		})

		It("rejects a claim whose nearest neighbor carries another name", func() {
			result, err := v.Verify(ctx, clip("alice2.wav"), "Bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Verified).To(BeFalse())
			Expect(result.MatchedName).To(Equal("Alice"))
			Expect(result.Message()).To(ContainSubstring("❌ Verification failed for 'Bob'"))
		})

		It("does not gate acceptance on the similarity threshold", func() {
			// An orthogonal probe scores near zero against every enrollee,
			// far below any sensible threshold, yet the claim is accepted
			// because name equality with the top match is the only check.
			embedder.Embeddings["weird.wav"] = []float32{0, 0.01, 1}

			result, err := v.Verify(ctx, clip("weird.wav"), "Bob")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Verified).To(BeTrue())
			Expect(result.Score).To(BeNumerically("<", 0.1))
			Expect(result.Threshold).To(BeNumerically("~", verifier.DefaultThreshold, 1e-6))
		})

		It("returns ErrNoMatch against an empty collection", func() {
			Expect(v.Clear(ctx)).To(Succeed())

			_, err := v.Verify(ctx, clip("alice2.wav"), "Alice")
			Expect(err).To(MatchError(verifier.ErrNoMatch))
		})

		It("rejects an empty claimed name", func() {
			_, err := v.Verify(ctx, clip("alice2.wav"), "")
			Expect(err).To(MatchError(verifier.ErrEmptyName))
		})

		It("publishes a verification event for failures too", func() {
			events.Verifications = nil

			_, err := v.Verify(ctx, clip("alice2.wav"), "Bob")
			Expect(err).NotTo(HaveOccurred())

			Expect(events.Verifications).To(HaveLen(1))
			Expect(events.Verifications[0].Verified).To(BeFalse())
			Expect(events.Verifications[0].ClaimedName).To(Equal("Bob"))
			Expect(events.Verifications[0].MatchedName).To(Equal("Alice"))
		})
	})

	Describe("Clear", func() {
		It("removes all enrolled speakers", func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())

			Expect(v.Clear(ctx)).To(Succeed())

			count, err := v.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("makes a subsequent verify fail with no match", func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())

			Expect(v.Clear(ctx)).To(Succeed())

			_, err = v.Verify(ctx, clip("alice2.wav"), "Alice")
			Expect(err).To(MatchError(verifier.ErrNoMatch))
		})
	})

	Describe("Speakers", func() {
		It("lists enrolled speakers without embeddings", func() {
			_, err := v.Enroll(ctx, clip("alice.wav"), "Alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = v.Enroll(ctx, clip("bob.wav"), "Bob")
			Expect(err).NotTo(HaveOccurred())

			speakers, err := v.Speakers(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(speakers).To(HaveLen(2))
			Expect(speakers[0].Name).To(Equal("Alice"))
			Expect(speakers[0].Embedding).To(BeNil())
		})
	})
})
