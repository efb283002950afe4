package embedding

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different sizes are
// combined or compared. This is a caller contract violation, not a
// recoverable signal gap.
var ErrDimensionMismatch = errors.New("vectors must have the same dimension")

// WeightedVector pairs a vector with its aggregation weight.
type WeightedVector struct {
	Vector []float32
	Weight float64
}

// WeightedAverage computes the weight-normalized sum of the given vectors.
// Returns nil for an empty input: "no vector yet" is the defined
// cold-start signal, distinct from a zero vector.
func WeightedAverage(items []WeightedVector) []float32 {
	if len(items) == 0 {
		return nil
	}

	dim := len(items[0].Vector)
	sum := make([]float64, dim)
	var totalWeight float64

	for _, item := range items {
		for i := 0; i < dim && i < len(item.Vector); i++ {
			sum[i] += float64(item.Vector[i]) * item.Weight
		}
		totalWeight += item.Weight
	}

	if totalWeight == 0 {
		return nil
	}
	result := make([]float32, dim)
	for i := range sum {
		result[i] = float32(sum[i] / totalWeight)
	}
	return result
}

// Combine returns the per-dimension linear combination wa*a + wb*b.
func Combine(a, b []float32, wa, wb float64) ([]float32, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("combine %d-dim with %d-dim: %w", len(a), len(b), ErrDimensionMismatch)
	}
	result := make([]float32, len(a))
	for i := range a {
		result[i] = float32(float64(a[i])*wa + float64(b[i])*wb)
	}
	return result, nil
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// in [-1, 1]. Zero vectors yield 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("compare %d-dim with %d-dim: %w", len(a), len(b), ErrDimensionMismatch)
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Normalize scales a vector to unit length. Zero vectors pass through.
func Normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}

	result := make([]float32, len(v))
	for i, x := range v {
		result[i] = float32(float64(x) / norm)
	}
	return result
}
