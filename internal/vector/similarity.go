// Package vector provides the similarity primitives used to compare embeddings.
package vector

import (
	"fmt"
	"math"
)

// Dot returns the inner product of a and b. Both must have the same length.
func Dot(a, b []float32) float64 {
	mustMatch(a, b)
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the Euclidean norm of x.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Cosine returns A·B / (‖A‖·‖B‖), or 0 when either vector has zero magnitude.
// Vectors of different dimension are a programming error and cause a panic.
func Cosine(a, b []float32) float64 {
	mustMatch(a, b)
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// SameDimension reports whether every vector in vs has length dim.
func SameDimension(dim int, vs ...[]float32) bool {
	for _, v := range vs {
		if len(v) != dim {
			return false
		}
	}
	return true
}

func mustMatch(a, b []float32) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector: dimension mismatch %d != %d", len(a), len(b)))
	}
}
