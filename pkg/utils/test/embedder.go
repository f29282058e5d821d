package testutils

import (
	"context"
	"fmt"

	"github.com/voxgateco/voxgate/pkg/audio"
)

// MockEmbedder is a test embedder that returns predictable embeddings
// keyed by clip path.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the clip path matches
	FailOn string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, clip *audio.Clip) ([]float32, error) {
	if m.FailOn != "" && clip.Path == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", clip.Path)
	}

	if emb, ok := m.Embeddings[clip.Path]; ok {
		return emb, nil
	}

	// Return a default embedding for any clip
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}
