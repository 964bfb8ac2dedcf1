// Package ranking converts raw vector similarity into user-facing relevance
// scores for the signal pipeline.
//
// The transform is a 4-segment piecewise-linear emphasis curve: low
// similarities are compressed toward 0 and high similarities expanded toward
// 10, so obviously relevant items stand apart from marginal ones in a way a
// single linear scale would not show.
package ranking

// Segment boundaries of the emphasis curve.
const (
	highBand = 0.8
	midBand  = 0.6
	lowBand  = 0.4
)

// Score maps a cosine similarity in [0, 1] to a relevance score in [0, 10].
//
// The function is continuous at every segment boundary and monotonically
// non-decreasing over [0, 1]:
//
//	s >= 0.8        -> 8 + (s-0.8)*10   [8, 10]
//	0.6 <= s < 0.8  -> 5 + (s-0.6)*15   [5, 8)
//	0.4 <= s < 0.6  -> 2 + (s-0.4)*15   [2, 5)
//	s < 0.4         -> s*5              [0, 2)
//
// Inputs outside [0, 1] violate the similarity index contract; behavior for
// them is undefined.
func Score(similarity float64) float64 {
	switch {
	case similarity >= highBand:
		return 8 + (similarity-highBand)*10
	case similarity >= midBand:
		return 5 + (similarity-midBand)*15
	case similarity >= lowBand:
		return 2 + (similarity-lowBand)*15
	default:
		return similarity * 5
	}
}
