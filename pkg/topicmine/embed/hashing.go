package embed

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// DefaultHashingDims is the vector size of HashingEmbedder
const DefaultHashingDims = 384

// HashingEmbedder is a deterministic, in-process embedder. Each word and each
// character trigram of each word is hashed into a signed bucket, so phrases
// that share words or word stems land close together. It needs no model files
// or network and gives identical vectors on every run.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a hashing embedder with the given dimension
// (DefaultHashingDims when dims < 1).
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims < 1 {
		dims = DefaultHashingDims
	}
	return &HashingEmbedder{dims: dims}
}

// Embed implements Embedder.
func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, h.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h.add(vec, "w:"+w, 1.0)
		padded := []rune("<" + w + ">")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(vec, "c:"+string(padded[i:i+3]), 0.5)
		}
	}
	return Normalize(vec), nil
}

// EmbedBatch implements BatchEmbedder.
func (h *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := h.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Close implements Embedder.
func (h *HashingEmbedder) Close() error { return nil }

func (h *HashingEmbedder) add(vec []float64, feature string, weight float64) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
