// Package vector provides interfaces and implementations for storing and
// searching speaker voice embeddings.
package vector

import "context"

// Speaker represents one enrolled voice record.
type Speaker struct {
	// ID is a unique identifier for the record (a generated UUID).
	ID string

	// Name is the user-supplied speaker name.
	Name string

	// Embedding is the fixed-length voice embedding for the speaker.
	Embedding []float32
}

// Match represents a search result with similarity score.
type Match struct {
	Speaker

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of speaker embeddings.
type Driver interface {
	// Upsert stores speakers with their embeddings. If a speaker with the
	// same ID already exists, implementers should update the record.
	Upsert(ctx context.Context, speakers []Speaker) error

	// Query finds the topK most similar speakers to the given embedding
	// across the whole collection.
	Query(ctx context.Context, embedding []float32, topK int) ([]Match, error)

	// QueryByName is Query restricted to records stored under the given
	// name. Enrollment uses it as an existence check for duplicate names.
	QueryByName(ctx context.Context, embedding []float32, name string, topK int) ([]Match, error)

	// Scroll lists up to limit stored speakers without their embeddings.
	Scroll(ctx context.Context, limit int) ([]Speaker, error)

	// Count returns the number of stored speakers.
	Count(ctx context.Context) (uint64, error)

	// Reset drops and recreates the underlying collection, removing every
	// stored speaker. Irreversible.
	Reset(ctx context.Context) error

	// Close releases any resources held by the driver.
	Close() error
}
