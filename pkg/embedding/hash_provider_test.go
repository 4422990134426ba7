package embedding

import (
	"math"
	"testing"
)

func norm(values []float32) float64 {
	var sum float64
	for _, v := range values {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestHashProviderEmptyText(t *testing.T) {
	p := NewHashProvider(384)

	resp, err := p.Generate("", "query")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(resp.Embedding.Values) != 384 {
		t.Fatalf("len = %d, want 384", len(resp.Embedding.Values))
	}
	for i, v := range resp.Embedding.Values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("values[%d] = %v, want finite", i, v)
		}
		if v != 0 {
			t.Fatalf("values[%d] = %v, want 0 for empty input", i, v)
		}
	}
}

func TestHashProviderUnitNorm(t *testing.T) {
	p := NewHashProvider(384)

	tests := []string{
		"hello world",
		"오늘 날씨 어때?",
		"a",
		"The quick brown fox jumps over the lazy dog. 1234567890",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			resp, err := p.Generate(text, "document")
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			got := norm(resp.Embedding.Values)
			if math.Abs(got-1.0) > 1e-5 {
				t.Errorf("norm = %v, want 1.0", got)
			}
		})
	}
}

func TestHashProviderDeterministic(t *testing.T) {
	p := NewHashProvider(384)

	a, err := p.Generate("machine learning", "query")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	b, err := p.Generate("machine learning", "document")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i := range a.Embedding.Values {
		if a.Embedding.Values[i] != b.Embedding.Values[i] {
			t.Fatalf("values[%d] differ: %v vs %v", i, a.Embedding.Values[i], b.Embedding.Values[i])
		}
	}
}

func TestHashProviderDefaultDims(t *testing.T) {
	p := NewHashProvider(0)
	if p.Dims != 384 {
		t.Errorf("Dims = %d, want 384", p.Dims)
	}
}
