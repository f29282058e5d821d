// Package qdrant provides a Qdrant vector database driver implementation.
package qdrant

import (
	"context"
	"fmt"
	"os"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection for speaker embeddings.
	DefaultCollectionName = "speaker_verification"

	// DefaultPort is Qdrant's default gRPC port.
	DefaultPort = 6334

	// DefaultDimensions is the embedding size of the default x-vector
	// speaker encoder.
	DefaultDimensions = 512
)

// QdrantDriver implements vector.Driver using Qdrant's gRPC API.
type QdrantDriver struct {
	client         *qdrant.Client
	collectionName string
	dimensions     uint64
	logger         *zap.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant server host. Defaults to DefaultHost() if empty.
	Host string

	// Port is the Qdrant gRPC port. Defaults to DefaultPort if zero.
	Port int

	// CollectionName is the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding vector size.
	// Defaults to DefaultDimensions if zero.
	Dimensions uint
}

// DefaultHost returns the Qdrant host to use when none is configured.
// Inside a Docker container the service is reachable under the compose
// name "qdrant"; on a plain host it is localhost.
func DefaultHost() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "qdrant"
	}
	return "localhost"
}

// NewQdrantDriver creates a new Qdrant vector driver and ensures the
// speaker collection exists.
func NewQdrantDriver(c Config, logger *zap.Logger) (*QdrantDriver, error) {
	host := c.Host
	if host == "" {
		host = DefaultHost()
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	dimensions := uint64(c.Dimensions)
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant at %s:%d: %v", vector.ErrConnection, host, port, err)
	}

	d := &QdrantDriver{
		client:         client,
		collectionName: collectionName,
		dimensions:     dimensions,
		logger:         logger,
	}

	if err := d.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected to Qdrant",
		zap.String("host", host),
		zap.Int("port", port),
		zap.String("collection", collectionName),
		zap.Uint64("dimensions", dimensions),
	)

	return d, nil
}

// ensureCollection creates the speaker collection if it does not exist yet.
// Vectors are compared with cosine distance, matching the encoder's
// similarity semantics.
func (d *QdrantDriver) ensureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collectionName)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, d.collectionName, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     d.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", d.collectionName, err)
	}

	d.logger.Info("created collection", zap.String("collection", d.collectionName))

	return nil
}

// Upsert stores speakers with their embeddings.
func (d *QdrantDriver) Upsert(ctx context.Context, speakers []vector.Speaker) error {
	if len(speakers) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(speakers))
	for i, s := range speakers {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(s.ID),
			Vectors: qdrant.NewVectors(s.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{"name": s.Name}),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d speakers: %w", len(speakers), err)
	}

	d.logger.Debug("upserted speakers into qdrant",
		zap.Int("count", len(speakers)),
	)

	return nil
}

// Query finds the topK most similar speakers to the given embedding.
func (d *QdrantDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.Match, error) {
	return d.query(ctx, embedding, nil, topK)
}

// QueryByName finds the topK most similar speakers stored under the given name.
func (d *QdrantDriver) QueryByName(ctx context.Context, embedding []float32, name string, topK int) ([]vector.Match, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("name", name),
		},
	}
	return d.query(ctx, embedding, filter, topK)
}

func (d *QdrantDriver) query(ctx context.Context, embedding []float32, filter *qdrant.Filter, topK int) ([]vector.Match, error) {
	if topK <= 0 {
		topK = 10
	}

	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", d.collectionName, err)
	}

	matches := make([]vector.Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, vector.Match{
			Speaker: vector.Speaker{
				ID:   p.GetId().GetUuid(),
				Name: p.GetPayload()["name"].GetStringValue(),
			},
			Score: p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant",
		zap.Int("results", len(matches)),
	)

	return matches, nil
}

// Scroll lists up to limit stored speakers without their embeddings.
func (d *QdrantDriver) Scroll(ctx context.Context, limit int) ([]vector.Speaker, error) {
	if limit <= 0 {
		limit = 10
	}

	points, err := d.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: d.collectionName,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling collection %q: %w", d.collectionName, err)
	}

	speakers := make([]vector.Speaker, 0, len(points))
	for _, p := range points {
		speakers = append(speakers, vector.Speaker{
			ID:   p.GetId().GetUuid(),
			Name: p.GetPayload()["name"].GetStringValue(),
		})
	}

	return speakers, nil
}

// Count returns the number of stored speakers.
func (d *QdrantDriver) Count(ctx context.Context) (uint64, error) {
	count, err := d.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: d.collectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("counting collection %q: %w", d.collectionName, err)
	}

	return count, nil
}

// Reset drops and recreates the speaker collection.
func (d *QdrantDriver) Reset(ctx context.Context) error {
	if err := d.client.DeleteCollection(ctx, d.collectionName); err != nil {
		return fmt.Errorf("deleting collection %q: %w", d.collectionName, err)
	}

	if err := d.ensureCollection(ctx); err != nil {
		return err
	}

	d.logger.Info("collection reset", zap.String("collection", d.collectionName))

	return nil
}

// Close releases resources held by the driver.
func (d *QdrantDriver) Close() error {
	return d.client.Close()
}

// Ensure QdrantDriver implements vector.Driver
var _ vector.Driver = (*QdrantDriver)(nil)
