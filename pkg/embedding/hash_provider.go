package embedding

import (
	"math"
)

// HashProvider is a deterministic, dependency-free embedder. Each character's
// code point (scaled by 1/1000) is accumulated into position index mod dims,
// capped at the first dims characters, then the vector is L2-normalized.
//
// This is NOT a semantic embedding model. It exists so the vector search path
// works end to end without an embedding service, and its arithmetic must stay
// stable: vectors already stored with it are only comparable to queries
// embedded the same way.
type HashProvider struct {
	Dims int
}

var _ EmbeddingProvider = &HashProvider{}

func NewHashProvider(dims int) *HashProvider {
	if dims <= 0 {
		dims = 384
	}
	return &HashProvider{Dims: dims}
}

func (p *HashProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	// taskType is ignored; the hash is symmetric for documents and queries.
	vec := make([]float64, p.Dims)

	i := 0
	for _, r := range text {
		if i >= p.Dims {
			break
		}
		vec[i%p.Dims] += float64(r) / 1000
		i++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		// Zero vector stays zero; dividing by 1 avoids NaN for empty input.
		norm = 1
	}

	values := make([]float32, p.Dims)
	for i, v := range vec {
		values[i] = float32(v / norm)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: values},
	}, nil
}
