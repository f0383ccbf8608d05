package matching

import (
	"math"

	svcErr "github.com/goldwen/matching-service/internal/errors"
)

const (
	// VectorLength is the number of questionnaire answers in a profile.
	VectorLength = 10

	minAnswer = 1
	maxAnswer = 5
)

// ValidateVector checks a personality vector against the questionnaire
// domain: exactly 10 components, each in [1,5].
func ValidateVector(v []int) error {
	if len(v) != VectorLength {
		return svcErr.Validation("personality vector must have exactly %d components, got %d", VectorLength, len(v))
	}
	for i, x := range v {
		if x < minAnswer || x > maxAnswer {
			return svcErr.Validation("personality answer %d out of range: %d (must be %d..%d)", i+1, x, minAnswer, maxAnswer)
		}
	}
	return nil
}

// Score returns the cosine similarity of two personality vectors, clamped
// into [0,1]. Pure and deterministic; both vectors are iterated in the same
// index order so Score(a,b) and Score(b,a) run the identical float
// computation.
//
// The [1,5] answer domain makes zero vectors impossible, so there is no
// divide-by-zero case once validation has passed. Note cosine similarity is
// scale-invariant: all-1s against all-5s scores exactly 1.0.
func Score(a, b []int) (float64, error) {
	if err := ValidateVector(a); err != nil {
		return 0, err
	}
	if err := ValidateVector(b); err != nil {
		return 0, err
	}

	var dot, normA, normB float64
	for i := 0; i < VectorLength; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Clamp against floating-point drift on near-parallel vectors.
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, nil
}
