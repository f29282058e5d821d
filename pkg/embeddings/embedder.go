// Package embeddings
package embeddings

import (
	"context"

	"github.com/voxgateco/voxgate/pkg/audio"
)

// Embedder extracts speaker embeddings from voice clips.
type Embedder interface {
	// Embed converts a voice clip into a fixed-length speaker embedding.
	Embed(ctx context.Context, clip *audio.Clip) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
