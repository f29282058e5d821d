// Package speechbrain implements pkg/embeddings' Embedder as a client for a
// SpeechBrain speaker-encoder inference sidecar. The sidecar holds the
// pretrained x-vector model and maps WAV audio to 512-dimensional embeddings.
package speechbrain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voxgateco/voxgate/pkg/audio"
	"github.com/voxgateco/voxgate/pkg/embeddings"
	"github.com/voxgateco/voxgate/pkg/vector"
)

const (
	// DefaultModel is the default pretrained speaker encoder.
	DefaultModel = "spkrec-xvect-voxceleb"

	// DefaultBaseURL is the default encoder sidecar URL.
	DefaultBaseURL = "http://localhost:8100"

	// DefaultDimensions is the embedding size of the x-vector encoder.
	DefaultDimensions = 512
)

// Embedder wraps the encoder sidecar's embedding API.
type Embedder struct {
	baseURL    string
	model      string
	dimensions uint
	httpClient *http.Client
}

// EmbedderConfig holds configuration for the SpeechBrain embedder.
type EmbedderConfig struct {
	// BaseURL is the encoder sidecar URL (e.g., "http://localhost:8100").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the pretrained encoder to use. Defaults to DefaultModel
	// if empty.
	Model string

	// Dimensions is the expected embedding size. Responses of any other
	// size are rejected. Defaults to DefaultDimensions if zero.
	Dimensions uint
}

// embedRequest is the request body for the sidecar's embedding API.
// Audio carries the raw WAV bytes, base64-encoded by encoding/json.
type embedRequest struct {
	Model string `json:"model"`
	Audio []byte `json:"audio"`
}

// embedResponse is the response from the sidecar's embedding API.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewEmbedder creates a new embedder backed by the encoder sidecar.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	return &Embedder{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Embed converts a voice clip into a speaker embedding.
func (e *Embedder) Embed(ctx context.Context, clip *audio.Clip) ([]float32, error) {
	if clip == nil || len(clip.Data) == 0 {
		return nil, fmt.Errorf("%w: empty clip", vector.ErrEmbedding)
	}

	reqBody := embedRequest{
		Model: e.model,
		Audio: clip.Data,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", vector.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", vector.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", vector.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: encoder returned status %d: %s", vector.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vector.ErrEmbedding, err)
	}

	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", vector.ErrEmbedding)
	}

	if uint(len(embedResp.Embedding)) != e.dimensions {
		return nil, fmt.Errorf("%w: encoder returned %d dimensions, expected %d",
			vector.ErrEmbedding, len(embedResp.Embedding), e.dimensions)
	}

	return embedResp.Embedding, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
