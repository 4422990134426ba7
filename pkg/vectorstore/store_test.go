package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddRejectsMismatchedEmbeddingWidth(t *testing.T) {
	store := NewPgStore(nil, 384)

	err := store.Add(context.Background(), "documents", []ChunkInput{
		{ChunkKey: "doc.txt_chunk_0", Document: "본문", Embedding: make([]float32, 768)},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "768 dimensions")
	assert.Contains(t, err.Error(), "expects 384")
	assert.Contains(t, err.Error(), "doc.txt_chunk_0")
}

func TestQueryRejectsMismatchedEmbeddingWidth(t *testing.T) {
	store := NewPgStore(nil, 384)

	_, err := store.Query(context.Background(), "documents", make([]float32, 512), 5)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "512 dimensions")
}

func TestAddEmptyInputIsNoop(t *testing.T) {
	store := NewPgStore(nil, 384)

	assert.NoError(t, store.Add(context.Background(), "documents", nil))
}
