// Package embed provides text embedding backends and vector helpers.
//
// An Embedder is an explicitly constructed, caller-owned object: build it once,
// inject it into the semantic backend, and Close it when done.
package embed

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Close releases the backend.
	Close() error
}

// BatchEmbedder extends Embedder with batch embedding support.
// When EmbedBatch returns nil error, the result slice must have the same length
// as the input texts slice, with result[i] corresponding to texts[i].
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbedAll embeds every text, in one call when e supports batching.
func EmbedAll(ctx context.Context, e Embedder, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if b, ok := e.(BatchEmbedder); ok {
		vecs, err := b.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(vecs), len(texts))
		}
		return vecs, nil
	}

	vecs := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

// CosineSimilarity computes similarity between two embeddings.
// Returns 0 if vectors have different lengths, are empty, or either is zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// Normalize returns v scaled to unit L2 length; a zero vector is copied as is.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	if n := floats.Norm(out, 2); n > 0 {
		floats.Scale(1/n, out)
	}
	return out
}

// WeightedMean averages vectors with the given weights. Vectors of a
// different dimension than the first are rejected.
func WeightedMean(vecs [][]float64, weights []float64) ([]float64, error) {
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed: weighted mean of no vectors")
	}
	dim := len(vecs[0])
	sum := make([]float64, dim)
	total := 0.0
	for i, v := range vecs {
		if len(v) != dim {
			return nil, fmt.Errorf("embed: vector %d has dimension %d, want %d", i, len(v), dim)
		}
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		floats.AddScaled(sum, w, v)
		total += w
	}
	if total == 0 || math.IsNaN(total) {
		return nil, fmt.Errorf("embed: weights sum to %v", total)
	}
	floats.Scale(1/total, sum)
	return sum, nil
}
