package dotdir_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/voxgateco/voxgate/pkg/dotdir"
)

func TestDotdir(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dotdir Suite")
}

var _ = Describe("Manager", func() {
	var manager *dotdir.Manager

	BeforeEach(func() {
		manager = dotdir.NewManager()
	})

	Describe("Target", func() {
		It("uses the override directory when provided", func() {
			override := filepath.Join(GinkgoT().TempDir(), "custom")
			target, err := manager.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))

			info, err := os.Stat(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("creates the override directory if it does not exist", func() {
			override := filepath.Join(GinkgoT().TempDir(), "a", "b", "c")
			target, err := manager.Target(override)
			Expect(err).NotTo(HaveOccurred())

			info, err := os.Stat(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("prefers a local .voxgate directory over the home directory", func() {
			tmp := GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(tmp, ".voxgate"), 0o755)).To(Succeed())

			cwd, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmp)).To(Succeed())
			DeferCleanup(func() {
				Expect(os.Chdir(cwd)).To(Succeed())
			})

			target, err := manager.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(target)).To(Equal(".voxgate"))
		})
	})
})
