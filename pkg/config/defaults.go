package config

const (
	defaultAPIListen       = ":7860"
	defaultClientAPITarget = "http://localhost:7860"

	defaultVectorProvider   = "qdrant"
	defaultVectorCollection = "speaker_verification"

	defaultEmbeddingProvider   = "speechbrain"
	defaultEmbeddingTarget     = "http://localhost:8100"
	defaultEmbeddingModel      = "spkrec-xvect-voxceleb"
	defaultEmbeddingDimensions = 512

	defaultVerifyThreshold = 0.016
	defaultVerifyTopK      = 10

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "voxgate.speakers"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Verify: VerifyConfig{
			Threshold: defaultVerifyThreshold,
			TopK:      defaultVerifyTopK,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
