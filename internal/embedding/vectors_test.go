package embedding

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// VectorsSuite covers the vector math helpers.
type VectorsSuite struct {
	suite.Suite
}

func TestVectorsSuite(t *testing.T) {
	suite.Run(t, new(VectorsSuite))
}

// =============================================================================
// GOOD SCENARIOS - Expected normal operations
// =============================================================================

func (s *VectorsSuite) TestCosineSimilarity_GoodScenarios_Identical() {
	a := []float32{1, 2, 3}
	sim, err := CosineSimilarity(a, a)
	s.Require().NoError(err)
	s.InDelta(1.0, sim, 1e-6, "identical vectors should be fully similar")
}

func (s *VectorsSuite) TestCosineSimilarity_GoodScenarios_Orthogonal() {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	s.Require().NoError(err)
	s.InDelta(0.0, sim, 1e-6)
}

func (s *VectorsSuite) TestCosineSimilarity_GoodScenarios_Opposite() {
	sim, err := CosineSimilarity([]float32{1, 1}, []float32{-1, -1})
	s.Require().NoError(err)
	s.InDelta(-1.0, sim, 1e-6)
}

func (s *VectorsSuite) TestWeightedAverage_GoodScenarios_TwoVectors() {
	avg := WeightedAverage([]WeightedVector{
		{Vector: []float32{1, 0}, Weight: 1},
		{Vector: []float32{0, 1}, Weight: 3},
	})
	s.Require().Len(avg, 2)
	s.InDelta(0.25, float64(avg[0]), 1e-6)
	s.InDelta(0.75, float64(avg[1]), 1e-6)
}

func (s *VectorsSuite) TestCombine_GoodScenarios_SeventyThirty() {
	v, err := Combine([]float32{1, 0}, []float32{0, 1}, 0.7, 0.3)
	s.Require().NoError(err)
	s.InDelta(0.7, float64(v[0]), 1e-6)
	s.InDelta(0.3, float64(v[1]), 1e-6)
}

func (s *VectorsSuite) TestNormalize_GoodScenarios_UnitLength() {
	v := Normalize([]float32{3, 4})
	s.InDelta(0.6, float64(v[0]), 1e-6)
	s.InDelta(0.8, float64(v[1]), 1e-6)
}

// =============================================================================
// BAD SCENARIOS - Error handling and edge cases
// =============================================================================

func (s *VectorsSuite) TestCosineSimilarity_BadScenarios_DimensionMismatch() {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	s.ErrorIs(err, ErrDimensionMismatch)
}

func (s *VectorsSuite) TestCosineSimilarity_BadScenarios_ZeroVector() {
	sim, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
	s.Require().NoError(err)
	s.Zero(sim, "zero vectors carry no direction")
}

func (s *VectorsSuite) TestWeightedAverage_BadScenarios_Empty() {
	s.Nil(WeightedAverage(nil))
}

func (s *VectorsSuite) TestWeightedAverage_BadScenarios_ZeroTotalWeight() {
	avg := WeightedAverage([]WeightedVector{{Vector: []float32{1, 1}, Weight: 0}})
	s.Nil(avg)
}

func (s *VectorsSuite) TestCombine_BadScenarios_DimensionMismatch() {
	_, err := Combine([]float32{1}, []float32{1, 2}, 0.5, 0.5)
	s.ErrorIs(err, ErrDimensionMismatch)
}
