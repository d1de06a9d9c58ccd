// Package scoring holds the pure decision rules of the seed lifecycle:
// keyword matching, confidence scoring, news evidence boosts and status
// classification.
package scoring

import "math"

const (
	// BaselineConfidence is assigned when no keyword matched
	BaselineConfidence = 0.1
	// DetectionCap bounds confidence reachable from keyword matches alone
	DetectionCap = 0.95

	detectionBase     = 0.3
	detectionPerMatch = 0.1
)

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// DetectionConfidence scores a fresh detection from its number of matched keywords
func DetectionConfidence(matched int) float64 {
	if matched <= 0 {
		return BaselineConfidence
	}
	v := math.Min(detectionBase+detectionPerMatch*float64(matched), DetectionCap)
	return Round2(clamp(v, 0, 1))
}

// ReevaluatedConfidence adds accumulated evidence boost to a prior confidence
func ReevaluatedConfidence(base, totalBoost float64) float64 {
	return Round2(clamp(base+totalBoost, 0, 1))
}
