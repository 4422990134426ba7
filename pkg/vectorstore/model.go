package vectorstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Collection is a named partition of the store holding embedded chunks.
type Collection struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Collection) TableName() string {
	return "collections"
}

// Chunk is one embedded slice of an uploaded document. The embedding column
// is created as vector(384) for the default hash embedder; cmd/migrate
// re-types it to EMBEDDING_DIMENSIONS when a different width is configured.
type Chunk struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CollectionId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChunkKey         string          `gorm:"not null;index"` // e.g. "report.pdf_chunk_3"
	Document         string          `gorm:"type:text"`
	Embedding        pgvector.Vector `gorm:"type:vector(384)"`
	Source           string          `gorm:"index"`
	OriginalFilename string
	ChunkIndex       int `gorm:"default:0"`
	Page             *int
	FileSize         int64
	Metadata         datatypes.JSON
	UploadedAt       time.Time `gorm:"autoCreateTime"`
}

func (Chunk) TableName() string {
	return "document_chunks"
}

// ChunkInput is what callers hand to Add; the store assigns ids.
type ChunkInput struct {
	ChunkKey         string
	Document         string
	Embedding        []float32
	Source           string
	OriginalFilename string
	ChunkIndex       int
	Page             *int
	FileSize         int64
	Metadata         map[string]interface{}
}

// Match is a single nearest-neighbor query hit. Similarity is 1 - Distance.
type Match struct {
	Document string
	Source   string
	Page     *int
	Distance float64
	Metadata map[string]interface{}
}

// DocumentInfo summarizes one uploaded file (a group of chunks with one source).
type DocumentInfo struct {
	Filename     string
	OriginalName string
	Chunks       int
	Size         int64
	UploadTime   time.Time
}
