package recurring

import "math"

const (
	// MinScore is the lowest confidence that still produces a suggestion.
	MinScore = 0.5

	regularityWeight = 0.7
	countWeight      = 0.3
	// countSaturation is the number of gaps (not transactions) at which the
	// count bonus is maxed out: seven payments make six gaps.
	countSaturation = 6
)

// Score converts gap regularity and sample size into a confidence in [0, 1].
// An empty gap list scores exactly 0.
func Score(gaps []int, expectedDays int) float64 {
	if len(gaps) == 0 || expectedDays <= 0 {
		return 0
	}

	expected := float64(expectedDays)
	totalDeviation := 0.0
	for _, gap := range gaps {
		totalDeviation += math.Abs(float64(gap)-expected) / expected
	}
	avgDeviation := totalDeviation / float64(len(gaps))

	regularity := math.Max(0, 1-avgDeviation)
	countBonus := math.Min(1, float64(len(gaps))/countSaturation)

	return regularityWeight*regularity + countWeight*countBonus
}

// RoundScore rounds a score to two decimal places.
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}
