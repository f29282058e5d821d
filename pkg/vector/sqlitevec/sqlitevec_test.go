package sqlitevec_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/vector"
	"github.com/voxgateco/voxgate/pkg/vector/sqlitevec"
)

func TestSqlitevec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sqlitevec Suite")
}

var _ = Describe("SQLiteVecDriver", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	Describe("NewSQLiteVecDriver", func() {
		It("returns an error when DBPath is empty", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("returns an error when dimensions are not configured", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ":memory:"}, logger)
			Expect(err).To(HaveOccurred())
		})

		It("creates a driver with an in-memory database", func() {
			driver, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(driver.Close()).To(Succeed())
		})
	})

	Describe("Interface compliance", func() {
		It("implements vector.Driver", func() {
			var _ vector.Driver = (*sqlitevec.SQLiteVecDriver)(nil)
		})
	})

	Describe("with an in-memory database", func() {
		var (
			driver *sqlitevec.SQLiteVecDriver
			ctx    context.Context
		)

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			ctx = context.Background()
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		Describe("Upsert", func() {
			It("does nothing when given no speakers", func() {
				Expect(driver.Upsert(ctx, []vector.Speaker{})).To(Succeed())
			})

			It("stores a speaker", func() {
				Expect(driver.Upsert(ctx, []vector.Speaker{
					{ID: "id-1", Name: "Alice", Embedding: []float32{0.1, 0.2, 0.3, 0.4}},
				})).To(Succeed())

				count, err := driver.Count(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(uint64(1)))
			})

			It("updates an existing speaker instead of duplicating it", func() {
				Expect(driver.Upsert(ctx, []vector.Speaker{
					{ID: "id-1", Name: "Alice", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
				})).To(Succeed())
				Expect(driver.Upsert(ctx, []vector.Speaker{
					{ID: "id-1", Name: "Alicia", Embedding: []float32{0.9, 0.9, 0.9, 0.9}},
				})).To(Succeed())

				count, err := driver.Count(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(Equal(uint64(1)))

				speakers, err := driver.Scroll(ctx, 10)
				Expect(err).NotTo(HaveOccurred())
				Expect(speakers[0].Name).To(Equal("Alicia"))
			})
		})

		Describe("Query", func() {
			BeforeEach(func() {
				Expect(driver.Upsert(ctx, []vector.Speaker{
					{ID: "id-1", Name: "Alice", Embedding: []float32{1, 0, 0, 0}},
					{ID: "id-2", Name: "Bob", Embedding: []float32{0, 1, 0, 0}},
					{ID: "id-3", Name: "Carol", Embedding: []float32{0.9, 0.1, 0, 0}},
				})).To(Succeed())
			})

			It("ranks the nearest speaker first", func() {
				matches, err := driver.Query(ctx, []float32{1, 0, 0, 0}, 10)
				Expect(err).NotTo(HaveOccurred())
				Expect(matches).NotTo(BeEmpty())
				Expect(matches[0].Name).To(Equal("Alice"))
				Expect(matches[0].Score).To(BeNumerically("~", 1.0, 1e-4))
			})

			It("limits results to topK", func() {
				matches, err := driver.Query(ctx, []float32{1, 0, 0, 0}, 2)
				Expect(err).NotTo(HaveOccurred())
				Expect(matches).To(HaveLen(2))
			})
		})

		Describe("QueryByName", func() {
			BeforeEach(func() {
				Expect(driver.Upsert(ctx, []vector.Speaker{
					{ID: "id-1", Name: "Alice", Embedding: []float32{1, 0, 0, 0}},
					{ID: "id-2", Name: "Bob", Embedding: []float32{0, 1, 0, 0}},
				})).To(Succeed())
			})

			It("only matches the given name", func() {
				matches, err := driver.QueryByName(ctx, []float32{1, 0, 0, 0}, "Bob", 10)
				Expect(err).NotTo(HaveOccurred())
				Expect(matches).To(HaveLen(1))
				Expect(matches[0].Name).To(Equal("Bob"))
			})

			It("returns nothing for an unknown name", func() {
				matches, err := driver.QueryByName(ctx, []float32{1, 0, 0, 0}, "Mallory", 10)
				Expect(err).NotTo(HaveOccurred())
				Expect(matches).To(BeEmpty())
			})
		})

		Describe("Reset", func() {
			It("removes all speakers and leaves a usable store", func() {
				Expect(driver.Upsert(ctx, []vector.Speaker{
					{ID: "id-1", Name: "Alice", Embedding: []float32{1, 0, 0, 0}},
				})).To(Succeed())

				Expect(driver.Reset(ctx)).To(Succeed())

				count, err := driver.Count(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(count).To(BeZero())

				// The recreated schema accepts new enrollments.
				Expect(driver.Upsert(ctx, []vector.Speaker{
					{ID: "id-2", Name: "Bob", Embedding: []float32{0, 1, 0, 0}},
				})).To(Succeed())
			})
		})
	})
})
