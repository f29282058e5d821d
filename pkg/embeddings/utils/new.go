// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/voxgateco/voxgate/pkg/embeddings"
	"github.com/voxgateco/voxgate/pkg/embeddings/speechbrain"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimensions   uint
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "speechbrain":
		return speechbrain.NewEmbedder(speechbrain.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
