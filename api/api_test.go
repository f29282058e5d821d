package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	testutils "github.com/voxgateco/voxgate/pkg/utils/test"
	"github.com/voxgateco/voxgate/pkg/vector/inmemory"
	"github.com/voxgateco/voxgate/pkg/verifier"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

// makeWAV renders a short mono PCM clip and returns the encoded bytes.
func makeWAV() []byte {
	f, err := os.CreateTemp("", "api-test-*.wav")
	Expect(err).NotTo(HaveOccurred())
	defer os.Remove(f.Name())
	defer f.Close()

	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           make([]int, 1600),
		SourceBitDepth: 16,
	}
	Expect(enc.Write(buf)).To(Succeed())
	Expect(enc.Close()).To(Succeed())

	data, err := os.ReadFile(f.Name())
	Expect(err).NotTo(HaveOccurred())
	return data
}

// multipartBody builds a multipart form with a name field and a WAV file
// uploaded under the given filename.
func multipartBody(name, filename string, audio []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if name != "" {
		Expect(writer.WriteField("name", name)).To(Succeed())
	}
	if audio != nil {
		part, err := writer.CreateFormFile("audio", filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(audio)
		Expect(err).NotTo(HaveOccurred())
	}

	Expect(writer.Close()).To(Succeed())
	return body, writer.FormDataContentType()
}

func decodeJSON(resp *http.Response, out any) {
	data, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(data, out)).To(Succeed())
}

var _ = Describe("Server", func() {
	var (
		server   *Server
		embedder *testutils.MockEmbedder
		wavData  []byte
	)

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder()
		embedder.Embeddings["alice.wav"] = []float32{1, 0, 0}
		embedder.Embeddings["bob.wav"] = []float32{0, 1, 0}

		vrf := verifier.NewVerifier(
			verifier.Config{},
			embedder,
			inmemory.NewDriver(),
			testutils.NewRecordingPublisher(),
			zap.NewNop(),
		)
		server = NewServer(Config{ListenAddr: ":0"}, vrf, zap.NewNop())

		wavData = makeWAV()
	})

	enroll := func(name, filename string) *http.Response {
		body, contentType := multipartBody(name, filename, wavData)
		req, err := http.NewRequest(http.MethodPost, "/v1/speakers/enroll", body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", contentType)

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	verify := func(name, filename string) *http.Response {
		body, contentType := multipartBody(name, filename, wavData)
		req, err := http.NewRequest(http.MethodPost, "/v1/speakers/verify", body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", contentType)

		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("GET /ping", func() {
		It("returns pong", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body string
			decodeJSON(resp, &body)
			Expect(body).To(Equal("pong"))
		})
	})

	Describe("GET /", func() {
		It("serves the browser UI", func() {
			req, err := http.NewRequest(http.MethodGet, "/", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("text/html"))

			data, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("speaker verification"))
		})
	})

	Describe("POST /v1/speakers/enroll", func() {
		It("enrolls a new speaker", func() {
			resp := enroll("Alice", "alice.wav")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body EnrollResponse
			decodeJSON(resp, &body)
			Expect(body.Name).To(Equal("Alice"))
			Expect(body.SpeakerID).NotTo(BeEmpty())
			Expect(body.Enrolled).To(Equal(uint64(1)))
			Expect(body.Message).To(ContainSubstring("✅ Speaker 'Alice' enrolled"))
		})

		It("rejects a duplicate name with 409", func() {
			Expect(enroll("Alice", "alice.wav").StatusCode).To(Equal(http.StatusOK))

			resp := enroll("Alice", "bob.wav")
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))

			var body ErrorResponse
			decodeJSON(resp, &body)
			Expect(body.Error).To(Equal("⚠️ Speaker 'Alice' is already enrolled."))
		})

		It("rejects a missing name with 400", func() {
			resp := enroll("", "alice.wav")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a missing audio file with 400", func() {
			body, contentType := multipartBody("Alice", "", nil)
			req, err := http.NewRequest(http.MethodPost, "/v1/speakers/enroll", body)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", contentType)

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects malformed audio with 400", func() {
			wavData = []byte("definitely not a wav file")
			resp := enroll("Alice", "alice.wav")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /v1/speakers/verify", func() {
		BeforeEach(func() {
			Expect(enroll("Alice", "alice.wav").StatusCode).To(Equal(http.StatusOK))
			Expect(enroll("Bob", "bob.wav").StatusCode).To(Equal(http.StatusOK))
		})

		It("accepts a matching claim", func() {
			resp := verify("Alice", "alice.wav")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body VerifyResponse
			decodeJSON(resp, &body)
			Expect(body.Verified).To(BeTrue())
			Expect(body.MatchedName).To(Equal("Alice"))
			Expect(body.Message).To(ContainSubstring("✅ Verified as 'Alice'"))
		})

		It("rejects a mismatched claim without failing the request", func() {
			resp := verify("Bob", "alice.wav")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body VerifyResponse
			decodeJSON(resp, &body)
			Expect(body.Verified).To(BeFalse())
			Expect(body.MatchedName).To(Equal("Alice"))
			Expect(body.Message).To(ContainSubstring("❌ Verification failed for 'Bob'"))
		})

		It("returns 404 when no speakers are enrolled", func() {
			req, err := http.NewRequest(http.MethodDelete, "/v1/speakers", nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())

			resp := verify("Alice", "alice.wav")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			var body ErrorResponse
			decodeJSON(resp, &body)
			Expect(body.Error).To(Equal("❌ No embedding found for 'Alice'."))
		})
	})

	Describe("GET /v1/speakers", func() {
		It("lists enrolled speakers", func() {
			Expect(enroll("Alice", "alice.wav").StatusCode).To(Equal(http.StatusOK))
			Expect(enroll("Bob", "bob.wav").StatusCode).To(Equal(http.StatusOK))

			req, err := http.NewRequest(http.MethodGet, "/v1/speakers", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Count    int               `json:"count"`
				Speakers []SpeakerResponse `json:"speakers"`
			}
			decodeJSON(resp, &body)
			Expect(body.Count).To(Equal(2))
			Expect(body.Speakers[0].Name).To(Equal("Alice"))
			Expect(body.Speakers[1].Name).To(Equal("Bob"))
		})

		It("returns an empty list when nothing is enrolled", func() {
			req, err := http.NewRequest(http.MethodGet, "/v1/speakers", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Count int `json:"count"`
			}
			decodeJSON(resp, &body)
			Expect(body.Count).To(BeZero())
		})
	})

	Describe("DELETE /v1/speakers", func() {
		It("clears the collection", func() {
			Expect(enroll("Alice", "alice.wav").StatusCode).To(Equal(http.StatusOK))

			req, err := http.NewRequest(http.MethodDelete, "/v1/speakers", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Message string `json:"message"`
			}
			decodeJSON(resp, &body)
			Expect(body.Message).To(Equal("🧹 Collection cleared (all vectors removed)."))

			listReq, err := http.NewRequest(http.MethodGet, "/v1/speakers", nil)
			Expect(err).NotTo(HaveOccurred())
			listResp, err := server.app.Test(listReq, -1)
			Expect(err).NotTo(HaveOccurred())

			var listBody struct {
				Count int `json:"count"`
			}
			decodeJSON(listResp, &listBody)
			Expect(listBody.Count).To(BeZero())
		})
	})
})
