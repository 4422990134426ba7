package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"chatbot-router-be/internal/dto"
	"chatbot-router-be/internal/pkg/logger"
	"chatbot-router-be/pkg/embedding"
	"chatbot-router-be/pkg/events"
	"chatbot-router-be/pkg/ingest"
	"chatbot-router-be/pkg/llm"
	pktNats "chatbot-router-be/pkg/nats"
	"chatbot-router-be/pkg/vectorstore"

	gocache "github.com/patrickmn/go-cache"
)

const (
	documentChunkSize = 1000
	csvAnalysisKeyFmt = "csv-analysis:%s"
)

type IRagService interface {
	AddDocument(ctx context.Context, filePath, fileName string, fileSize int64) (string, error)
	SearchDocuments(ctx context.Context, query string, topK int) ([]dto.SearchResult, error)
	RAGQuery(ctx context.Context, question string) (string, error)
	ListDocuments(ctx context.Context) (*dto.ListDocumentsResponse, error)
	GetCSVAnalysis(ctx context.Context, fileName string) (*dto.CSVAnalysisResponse, error)
	ResetCollection(ctx context.Context) error
}

type ragService struct {
	store             vectorstore.Store
	embeddingProvider embedding.EmbeddingProvider
	llmProvider       llm.LLMProvider
	publisherService  IPublisherService
	natsPub           *pktNats.Publisher
	analysisCache     *gocache.Cache
	collectionName    string
	logger            logger.ILogger
}

func NewRagService(
	store vectorstore.Store,
	embeddingProvider embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	publisherService IPublisherService,
	natsPub *pktNats.Publisher,
	analysisCache *gocache.Cache,
	collectionName string,
	log logger.ILogger,
) IRagService {
	return &ragService{
		store:             store,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		publisherService:  publisherService,
		natsPub:           natsPub,
		analysisCache:     analysisCache,
		collectionName:    collectionName,
		logger:            log,
	}
}

// AddDocument extracts, chunks and embeds one uploaded file into the
// collection, then announces the ingestion on the event bus.
func (s *ragService) AddDocument(ctx context.Context, filePath, fileName string, fileSize int64) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("파일이 존재하지 않습니다: %s", filePath)
	}

	content, err := ingest.ExtractText(filePath, fileName)
	if err != nil {
		return "", fmt.Errorf("문서 추가 실패: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("문서 추가 실패: 파일에서 텍스트를 추출할 수 없습니다")
	}

	safeName := ingest.SafeFileName(fileName)
	chunks := ingest.SplitText(content, documentChunkSize)
	s.logger.Info("RagService", "Document split into chunks", map[string]interface{}{
		"file":   safeName,
		"chunks": len(chunks),
	})

	uploadedAt := time.Now()
	inputs := make([]vectorstore.ChunkInput, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := s.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return "", fmt.Errorf("문서 추가 실패: embedding chunk %d: %w", i, err)
		}

		inputs = append(inputs, vectorstore.ChunkInput{
			ChunkKey:         fmt.Sprintf("%s_chunk_%d", safeName, i),
			Document:         chunk,
			Embedding:        res.Embedding.Values,
			Source:           safeName,
			OriginalFilename: fileName,
			ChunkIndex:       i,
			FileSize:         fileSize,
			Metadata: map[string]interface{}{
				"source":            safeName,
				"original_filename": fileName,
				"chunk_index":       i,
				"file_size":         fileSize,
				"upload_timestamp":  uploadedAt.Format(time.RFC3339),
			},
		})
	}

	if err := s.store.Add(ctx, s.collectionName, inputs); err != nil {
		return "", fmt.Errorf("문서 추가 실패: %w", err)
	}

	if err := s.publisherService.PublishDocumentIngested(dto.PublishDocumentIngestedMessage{
		Collection:       s.collectionName,
		Source:           safeName,
		OriginalFilename: fileName,
		Chunks:           len(chunks),
	}); err != nil {
		s.logger.Warn("RagService", "Failed to publish ingestion message", map[string]interface{}{"error": err.Error()})
	}

	if s.natsPub != nil {
		evt := events.NewDocumentIngested(s.collectionName, safeName, fileName, len(chunks))
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("RagService", "Failed to publish NATS event", map[string]interface{}{"error": err.Error()})
		}
	}

	return fmt.Sprintf("성공적으로 %d개의 청크를 %s에서 추가했습니다", len(chunks), fileName), nil
}

func (s *ragService) SearchDocuments(ctx context.Context, query string, topK int) ([]dto.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	res, err := s.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	matches, err := s.store.Query(ctx, s.collectionName, res.Embedding.Values, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}

	results := make([]dto.SearchResult, 0, len(matches))
	for _, m := range matches {
		metadata := m.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{"source": m.Source}
		}
		results = append(results, dto.SearchResult{
			Content:  m.Document,
			Metadata: metadata,
			Distance: m.Distance,
		})
	}
	return results, nil
}

func (s *ragService) RAGQuery(ctx context.Context, question string) (string, error) {
	relevantDocs, err := s.SearchDocuments(ctx, question, 3)
	if err != nil {
		return "", fmt.Errorf("failed to generate RAG response: %w", err)
	}

	contents := make([]string, 0, len(relevantDocs))
	for _, doc := range relevantDocs {
		contents = append(contents, doc.Content)
	}
	contextText := strings.Join(contents, "\n\n")

	prompt := fmt.Sprintf(`다음 문서들을 참고하여 질문에 답변해주세요:

문서 내용:
%s

질문: %s

답변:`, contextText, question)

	answer, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate RAG response: %w", err)
	}
	return answer, nil
}

func (s *ragService) ListDocuments(ctx context.Context) (*dto.ListDocumentsResponse, error) {
	infos, totalChunks, err := s.store.ListDocuments(ctx, s.collectionName)
	if err != nil {
		return nil, fmt.Errorf("문서 목록 조회 실패: %w", err)
	}

	documents := make([]string, 0, len(infos))
	details := make([]dto.DocumentDetail, 0, len(infos))
	for _, info := range infos {
		documents = append(documents, info.Filename)
		details = append(details, dto.DocumentDetail{
			Filename:     info.Filename,
			OriginalName: info.OriginalName,
			Chunks:       info.Chunks,
			Size:         info.Size,
			UploadTime:   info.UploadTime.Format(time.RFC3339),
		})
	}

	return &dto.ListDocumentsResponse{
		TotalDocuments:  len(infos),
		TotalChunks:     totalChunks,
		Documents:       documents,
		DocumentDetails: details,
	}, nil
}

// GetCSVAnalysis answers from the warm cache when the ingestion consumer has
// already analyzed the file, falling back to the store otherwise.
func (s *ragService) GetCSVAnalysis(ctx context.Context, fileName string) (*dto.CSVAnalysisResponse, error) {
	cacheKey := fmt.Sprintf(csvAnalysisKeyFmt, fileName)
	if s.analysisCache != nil {
		if cached, found := s.analysisCache.Get(cacheKey); found {
			if analysis, ok := cached.(*dto.CSVAnalysisResponse); ok {
				return analysis, nil
			}
		}
	}

	analysis, err := BuildCSVAnalysis(ctx, s.store, s.collectionName, fileName)
	if err != nil {
		return nil, err
	}

	if s.analysisCache != nil {
		s.analysisCache.Set(cacheKey, analysis, gocache.DefaultExpiration)
	}
	return analysis, nil
}

// BuildCSVAnalysis summarizes the stored chunks of one CSV file. Shared
// between the request path and the ingestion consumer that pre-warms the
// cache.
func BuildCSVAnalysis(ctx context.Context, store vectorstore.Store, collection, fileName string) (*dto.CSVAnalysisResponse, error) {
	chunks, err := store.GetBySource(ctx, collection, fileName)
	if err != nil {
		return nil, fmt.Errorf("CSV 분석 실패: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("CSV 분석 실패: CSV 파일을 찾을 수 없습니다")
	}

	hasStatistics := false
	for _, chunk := range chunks {
		if strings.Contains(chunk.Document, ingest.StatisticsMarker) {
			hasStatistics = true
			break
		}
	}

	preview := chunks[0].Document
	if len([]rune(preview)) > 500 {
		preview = string([]rune(preview)[:500]) + "..."
	}

	return &dto.CSVAnalysisResponse{
		FileName:      fileName,
		TotalChunks:   len(chunks),
		HasStatistics: hasStatistics,
		Preview:       preview,
	}, nil
}

func (s *ragService) ResetCollection(ctx context.Context) error {
	if err := s.store.Reset(ctx, s.collectionName, vectorstore.DefaultCollectionDescription); err != nil {
		return fmt.Errorf("컬렉션 리셋에 실패했습니다: %w", err)
	}

	if s.analysisCache != nil {
		s.analysisCache.Flush()
	}

	if s.natsPub != nil {
		if err := s.natsPub.Publish(ctx, events.NewCollectionReset(s.collectionName)); err != nil {
			s.logger.Warn("RagService", "Failed to publish reset event", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("RagService", "Collection reset", map[string]interface{}{"collection": s.collectionName})
	return nil
}
