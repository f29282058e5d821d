// Package inmemory provides an in-memory vector driver with brute-force
// cosine search. It backs tests and store-free demos.
package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/voxgateco/voxgate/pkg/vector"
)

// Driver implements vector.Driver with an in-process map and linear scan.
type Driver struct {
	mu       sync.RWMutex
	speakers map[string]vector.Speaker
	order    []string
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{
		speakers: make(map[string]vector.Speaker),
	}
}

// Upsert stores speakers with their embeddings.
func (d *Driver) Upsert(_ context.Context, speakers []vector.Speaker) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, s := range speakers {
		if _, exists := d.speakers[s.ID]; !exists {
			d.order = append(d.order, s.ID)
		}
		d.speakers[s.ID] = s
	}

	return nil
}

// Query finds the topK most similar speakers to the given embedding.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.Match, error) {
	return d.scan(embedding, "", topK), nil
}

// QueryByName finds the topK most similar speakers stored under the given name.
func (d *Driver) QueryByName(_ context.Context, embedding []float32, name string, topK int) ([]vector.Match, error) {
	return d.scan(embedding, name, topK), nil
}

func (d *Driver) scan(embedding []float32, name string, topK int) []vector.Match {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	matches := make([]vector.Match, 0, len(d.speakers))
	for _, s := range d.speakers {
		if name != "" && s.Name != name {
			continue
		}
		matches = append(matches, vector.Match{
			Speaker: s,
			Score:   cosineSimilarity(embedding, s.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	return matches
}

// Scroll lists up to limit stored speakers without their embeddings,
// in insertion order.
func (d *Driver) Scroll(_ context.Context, limit int) ([]vector.Speaker, error) {
	if limit <= 0 {
		limit = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	speakers := make([]vector.Speaker, 0, limit)
	for _, id := range d.order {
		if len(speakers) == limit {
			break
		}
		s := d.speakers[id]
		speakers = append(speakers, vector.Speaker{ID: s.ID, Name: s.Name})
	}

	return speakers, nil
}

// Count returns the number of stored speakers.
func (d *Driver) Count(_ context.Context) (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return uint64(len(d.speakers)), nil
}

// Reset removes every stored speaker.
func (d *Driver) Reset(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.speakers = make(map[string]vector.Speaker)
	d.order = nil

	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Ensure Driver implements vector.Driver
var _ vector.Driver = (*Driver)(nil)
