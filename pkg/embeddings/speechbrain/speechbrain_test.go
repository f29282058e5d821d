package speechbrain_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voxgateco/voxgate/pkg/audio"
	"github.com/voxgateco/voxgate/pkg/embeddings/speechbrain"
	"github.com/voxgateco/voxgate/pkg/vector"
)

func TestSpeechbrain(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Speechbrain Suite")
}

var _ = Describe("Embedder", func() {
	var (
		server   *httptest.Server
		received struct {
			Model string `json:"model"`
			Audio []byte `json:"audio"`
		}
		receivedPath string
		respond      func(w http.ResponseWriter)
		clip         *audio.Clip
	)

	BeforeEach(func() {
		respond = func(w http.ResponseWriter) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"embedding": []float32{0.1, 0.2, 0.3, 0.4},
			})
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&received)
			respond(w)
		}))

		clip = &audio.Clip{Data: []byte("RIFF-fake-wav-bytes"), SampleRate: 16000}
	})

	AfterEach(func() {
		server.Close()
	})

	newEmbedder := func(dims uint) *speechbrain.Embedder {
		e, err := speechbrain.NewEmbedder(speechbrain.EmbedderConfig{
			BaseURL:    server.URL,
			Dimensions: dims,
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	It("posts the clip bytes and default model to the sidecar", func() {
		e := newEmbedder(4)

		emb, err := e.Embed(context.Background(), clip)
		Expect(err).NotTo(HaveOccurred())
		Expect(emb).To(Equal([]float32{0.1, 0.2, 0.3, 0.4}))
		Expect(receivedPath).To(Equal("/api/embed"))
		Expect(received.Model).To(Equal(speechbrain.DefaultModel))
		Expect(received.Audio).To(Equal(clip.Data))
	})

	It("rejects a nil clip", func() {
		e := newEmbedder(4)

		_, err := e.Embed(context.Background(), nil)
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("rejects an embedding of unexpected size", func() {
		e := newEmbedder(512)

		_, err := e.Embed(context.Background(), clip)
		Expect(err).To(MatchError(vector.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("expected 512"))
	})

	It("surfaces non-200 responses as embedding errors", func() {
		respond = func(w http.ResponseWriter) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}
		e := newEmbedder(4)

		_, err := e.Embed(context.Background(), clip)
		Expect(err).To(MatchError(vector.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("model not loaded"))
	})

	It("errors when the sidecar returns no embedding", func() {
		respond = func(w http.ResponseWriter) {
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{}})
		}
		e := newEmbedder(4)

		_, err := e.Embed(context.Background(), clip)
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})
})
