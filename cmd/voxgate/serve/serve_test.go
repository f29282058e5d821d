package servecmder_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/voxgateco/voxgate/cmd/voxgate/serve"
)

func TestServeCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Serve Command Suite")
}

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("registers the listen flag with shorthand", func() {
		cmd := servecmder.NewServeCmd()
		flag := cmd.Flags().Lookup("listen")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("l"))
	})

	It("registers the vector store flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("vector-store-provider")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("vector-store-target")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("collection")).NotTo(BeNil())
	})

	It("registers the embedding flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("embedding-provider")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("embedding-target")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("embedding-model")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("embedding-dimensions")).NotTo(BeNil())
	})

	It("registers the verification flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("threshold")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("top-k")).NotTo(BeNil())
	})

	It("registers the event stream flags", func() {
		cmd := servecmder.NewServeCmd()
		Expect(cmd.Flags().Lookup("events-provider")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("events-brokers")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("events-topic")).NotTo(BeNil())
	})

	It("registers the no-mcp flag defaulting to false", func() {
		cmd := servecmder.NewServeCmd()
		flag := cmd.Flags().Lookup("no-mcp")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("false"))
	})
})
