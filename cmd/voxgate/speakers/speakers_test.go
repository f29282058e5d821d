package speakerscmder_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voxgateco/voxgate/api"
	speakerscmder "github.com/voxgateco/voxgate/cmd/voxgate/speakers"
)

func TestSpeakersCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Speakers Command Suite")
}

var _ = Describe("NewSpeakersCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := speakerscmder.NewSpeakersCmd()
		Expect(cmd.Use).To(Equal("speakers"))
	})

	It("has a clear subcommand", func() {
		cmd := speakerscmder.NewSpeakersCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElement("clear"))
	})

	It("rejects positional arguments", func() {
		cmd := speakerscmder.NewSpeakersCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})

	It("registers the api-target persistent flag", func() {
		cmd := speakerscmder.NewSpeakersCmd()
		flag := cmd.PersistentFlags().Lookup("api-target")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("http://localhost:7860"))
	})
})

var _ = Describe("ListAPI", func() {
	var (
		server       *httptest.Server
		gotPath      string
		responseCode int
		responseBody any
	)

	BeforeEach(func() {
		gotPath = ""
		responseCode = http.StatusOK
		responseBody = &speakerscmder.SpeakerList{
			Count: 2,
			Speakers: []api.SpeakerResponse{
				{ID: "id-1", Name: "Alice"},
				{ID: "id-2", Name: "Bob"},
			},
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(responseCode)
			json.NewEncoder(w).Encode(responseBody)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("fetches the speaker listing", func() {
		list, err := speakerscmder.ListAPI(server.URL)
		Expect(err).NotTo(HaveOccurred())

		Expect(gotPath).To(Equal("/v1/speakers"))
		Expect(list.Count).To(Equal(2))
		Expect(list.Speakers).To(HaveLen(2))
		Expect(list.Speakers[0].Name).To(Equal("Alice"))
	})

	It("parses an empty listing", func() {
		responseBody = &speakerscmder.SpeakerList{Count: 0}

		list, err := speakerscmder.ListAPI(server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(list.Count).To(BeZero())
		Expect(list.Speakers).To(BeEmpty())
	})

	It("treats non-200 responses as errors", func() {
		responseCode = http.StatusInternalServerError
		responseBody = &api.ErrorResponse{Error: "boom"}

		_, err := speakerscmder.ListAPI(server.URL)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("HTTP 500"))
	})

	It("returns a connection error for an unreachable target", func() {
		_, err := speakerscmder.ListAPI("http://127.0.0.1:1")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed to connect"))
	})
})
