// Package vector defines the vector store abstraction used for semantic
// retrieval. Implementations index raw embedding vectors under named
// namespaces; callers own the embedding step.
package vector

// Namespaces. Each entity kind lives in its own namespace so searches
// never cross domains.
const (
	NamespaceEvents          = "events"
	NamespaceHotels          = "hotels"
	NamespaceUsers           = "users"
	NamespacePlanners        = "planners"
	NamespaceHotelActivities = "hotel-activity-history"
)

// SearchResult is one scored match from a similarity search.
type SearchResult struct {
	ID      string            `json:"id"`
	Score   float64           `json:"score"` // cosine similarity in [0, 1]
	Payload map[string]string `json:"payload,omitempty"`
}

// DistanceToSimilarity converts a cosine distance to a similarity score.
func DistanceToSimilarity(distance float64) float64 {
	sim := 1.0 - distance
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
