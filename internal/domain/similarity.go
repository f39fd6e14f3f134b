package domain

import "math"

// Cosine computes cosine similarity between two embedding vectors.
// Returns a value in [-1, 1]. If either vector has zero norm (malformed
// or empty embedding), returns exactly 0 so ranking never produces NaN.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	for i := n; i < len(a); i++ {
		x := float64(a[i])
		normA += x * x
	}
	for i := n; i < len(b); i++ {
		y := float64(b[i])
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
