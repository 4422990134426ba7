package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is a collection-oriented vector store over Postgres + pgvector.
// Callers embed text themselves and hand the store opaque fixed-width vectors.
type Store interface {
	ListCollections(ctx context.Context) ([]string, error)
	EnsureCollection(ctx context.Context, name, description string) (*Collection, error)
	GetCollection(ctx context.Context, name string) (*Collection, error)
	Reset(ctx context.Context, name, description string) error
	Add(ctx context.Context, collection string, chunks []ChunkInput) error
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]Match, error)
	GetBySource(ctx context.Context, collection, source string) ([]Chunk, error)
	ListDocuments(ctx context.Context, collection string) ([]DocumentInfo, int64, error)
}

// DefaultCollectionDescription is used when a collection is created
// implicitly by an insert.
const DefaultCollectionDescription = "Document collection for RAG"

type pgStore struct {
	db   *gorm.DB
	dims int
}

// NewPgStore wraps db as a Store expecting dims-wide vectors. Inserts and
// queries with a different width are rejected before they reach Postgres,
// where the column type would produce a far less readable error.
func NewPgStore(db *gorm.DB, dims int) Store {
	if dims <= 0 {
		dims = 384
	}
	return &pgStore{db: db, dims: dims}
}

func (s *pgStore) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&Collection{}).
		Order("created_at ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

func (s *pgStore) GetCollection(ctx context.Context, name string) (*Collection, error) {
	var c Collection
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection %q: %w", name, err)
	}
	return &c, nil
}

func (s *pgStore) EnsureCollection(ctx context.Context, name, description string) (*Collection, error) {
	existing, err := s.GetCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	c := Collection{
		Id:          uuid.New(),
		Name:        name,
		Description: description,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	return &c, nil
}

// Reset drops the collection and everything in it, then recreates it empty.
func (s *pgStore) Reset(ctx context.Context, name, description string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Collection
		err := tx.Where("name = ?", name).First(&c).Error
		if err == nil {
			if err := tx.Where("collection_id = ?", c.Id).Delete(&Chunk{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&c).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&Collection{
			Id:          uuid.New(),
			Name:        name,
			Description: description,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("reset collection %q: %w", name, err)
	}
	return nil
}

func (s *pgStore) Add(ctx context.Context, collection string, chunks []ChunkInput) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, in := range chunks {
		if len(in.Embedding) != s.dims {
			return fmt.Errorf("chunk %q: embedding has %d dimensions, store expects %d", in.ChunkKey, len(in.Embedding), s.dims)
		}
	}

	c, err := s.EnsureCollection(ctx, collection, DefaultCollectionDescription)
	if err != nil {
		return err
	}

	rows := make([]Chunk, 0, len(chunks))
	for _, in := range chunks {
		var meta datatypes.JSON
		if in.Metadata != nil {
			raw, err := json.Marshal(in.Metadata)
			if err != nil {
				return fmt.Errorf("marshal chunk metadata: %w", err)
			}
			meta = raw
		}
		rows = append(rows, Chunk{
			Id:               uuid.New(),
			CollectionId:     c.Id,
			ChunkKey:         in.ChunkKey,
			Document:         in.Document,
			Embedding:        pgvector.NewVector(in.Embedding),
			Source:           in.Source,
			OriginalFilename: in.OriginalFilename,
			ChunkIndex:       in.ChunkIndex,
			Page:             in.Page,
			FileSize:         in.FileSize,
			Metadata:         meta,
		})
	}

	if err := s.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("add %d chunks to %q: %w", len(rows), collection, err)
	}
	return nil
}

// chunkWithDistance carries the cosine distance computed in SQL alongside the row.
type chunkWithDistance struct {
	Chunk
	Distance float64
}

func (s *pgStore) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = 5
	}
	if len(embedding) != s.dims {
		return nil, fmt.Errorf("query embedding has %d dimensions, store expects %d", len(embedding), s.dims)
	}

	c, err := s.GetCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("collection %q not found", collection)
	}

	var rows []chunkWithDistance
	// pgvector cosine distance: embedding <=> query. Similarity is 1 - distance.
	err = s.db.WithContext(ctx).
		Model(&Chunk{}).
		Select("*, (embedding <=> ?) AS distance", pgvector.NewVector(embedding)).
		Where("collection_id = ?", c.Id).
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(topK).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w", collection, err)
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		var meta map[string]interface{}
		if len(row.Metadata) > 0 {
			_ = json.Unmarshal(row.Metadata, &meta)
		}
		matches = append(matches, Match{
			Document: row.Document,
			Source:   row.Source,
			Page:     row.Page,
			Distance: row.Distance,
			Metadata: meta,
		})
	}
	return matches, nil
}

func (s *pgStore) GetBySource(ctx context.Context, collection, source string) ([]Chunk, error) {
	c, err := s.GetCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("collection %q not found", collection)
	}

	var chunks []Chunk
	err = s.db.WithContext(ctx).
		Where("collection_id = ? AND source = ?", c.Id, source).
		Order("chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("get chunks for source %q: %w", source, err)
	}
	return chunks, nil
}

func (s *pgStore) ListDocuments(ctx context.Context, collection string) ([]DocumentInfo, int64, error) {
	c, err := s.GetCollection(ctx, collection)
	if err != nil {
		return nil, 0, err
	}
	if c == nil {
		return []DocumentInfo{}, 0, nil
	}

	var infos []DocumentInfo
	err = s.db.WithContext(ctx).
		Model(&Chunk{}).
		Select("source AS filename, MAX(original_filename) AS original_name, COUNT(*) AS chunks, MAX(file_size) AS size, MAX(uploaded_at) AS upload_time").
		Where("collection_id = ?", c.Id).
		Group("source").
		Order("upload_time DESC").
		Scan(&infos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list documents in %q: %w", collection, err)
	}

	var totalChunks int64
	err = s.db.WithContext(ctx).
		Model(&Chunk{}).
		Where("collection_id = ?", c.Id).
		Count(&totalChunks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("count chunks in %q: %w", collection, err)
	}

	return infos, totalChunks, nil
}
