package vector

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a namespace/id pair has no stored vector.
// A missing vector is an expected state (cold start), so callers branch
// on it rather than failing.
var ErrNotFound = errors.New("vector not found")

// Store is the persistence contract for embedding vectors.
type Store interface {
	// Upsert stores or replaces the vector for an id within a namespace.
	// Payload entries become filterable attributes on search.
	Upsert(ctx context.Context, namespace, id string, vec []float32, payload map[string]string) error

	// Fetch returns the stored vector for an id, or ErrNotFound.
	Fetch(ctx context.Context, namespace, id string) ([]float32, error)

	// Search returns up to limit nearest vectors by cosine similarity,
	// best first. A non-empty filter restricts candidates to exact
	// payload matches.
	Search(ctx context.Context, namespace string, vec []float32, limit int, filter map[string]string) ([]SearchResult, error)

	// Delete removes a vector. Deleting a missing id is not an error.
	Delete(ctx context.Context, namespace, id string) error

	// Count returns the number of vectors in a namespace.
	Count(ctx context.Context, namespace string) (int64, error)

	// Close releases underlying resources.
	Close() error
}
