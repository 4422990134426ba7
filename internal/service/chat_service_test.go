package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-router-be/internal/dto"
	"chatbot-router-be/pkg/llm"
)

type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

type stubRagService struct {
	results   []dto.SearchResult
	searchErr error
}

func (s *stubRagService) AddDocument(ctx context.Context, filePath, fileName string, fileSize int64) (string, error) {
	return "", nil
}

func (s *stubRagService) SearchDocuments(ctx context.Context, query string, topK int) ([]dto.SearchResult, error) {
	return s.results, s.searchErr
}

func (s *stubRagService) RAGQuery(ctx context.Context, question string) (string, error) {
	return "", nil
}

func (s *stubRagService) ListDocuments(ctx context.Context) (*dto.ListDocumentsResponse, error) {
	return nil, nil
}

func (s *stubRagService) GetCSVAnalysis(ctx context.Context, fileName string) (*dto.CSVAnalysisResponse, error) {
	return nil, nil
}

func (s *stubRagService) ResetCollection(ctx context.Context) error {
	return nil
}

func TestProcessRAGMessageReferencesDocuments(t *testing.T) {
	rag := &stubRagService{results: []dto.SearchResult{
		{
			Content:  "사내 휴가 규정은 연 15일입니다.",
			Metadata: map[string]interface{}{"source": "policy.pdf"},
			Distance: 0.25,
		},
		{
			Content:  strings.Repeat("가", 250),
			Metadata: map[string]interface{}{},
			Distance: 0,
		},
	}}
	model := &stubLLM{response: "답변입니다."}
	svc := NewChatService(model, rag, nil, nil, noopLogger{})

	answer, referenced, err := svc.ProcessRAGMessage(context.Background(), "휴가는 며칠인가요?")

	require.NoError(t, err)
	assert.Equal(t, "답변입니다.", answer)
	require.Len(t, referenced, 2)

	assert.Equal(t, "policy.pdf", referenced[0].Source)
	assert.InDelta(t, 0.75, referenced[0].Relevance, 1e-9)

	// Missing source falls back to a positional label, zero distance to 0.8.
	assert.Equal(t, "문서 2", referenced[1].Source)
	assert.InDelta(t, 0.8, referenced[1].Relevance, 1e-9)
	assert.Equal(t, 203, len([]rune(referenced[1].Content)))
	assert.True(t, strings.HasSuffix(referenced[1].Content, "..."))

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "[문서 1] 사내 휴가 규정은 연 15일입니다.")
	assert.Contains(t, model.prompts[0], "질문: 휴가는 며칠인가요?")
}

func TestProcessRAGMessageNoDocuments(t *testing.T) {
	rag := &stubRagService{}
	model := &stubLLM{response: "일반 지식 답변"}
	svc := NewChatService(model, rag, nil, nil, noopLogger{})

	answer, referenced, err := svc.ProcessRAGMessage(context.Background(), "질문")

	require.NoError(t, err)
	assert.Equal(t, "일반 지식 답변", answer)
	assert.Empty(t, referenced)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "관련 정보를 찾을 수 없습니다")
}

func TestProcessRAGMessageSearchError(t *testing.T) {
	rag := &stubRagService{searchErr: errors.New("store down")}
	svc := NewChatService(&stubLLM{}, rag, nil, nil, noopLogger{})

	_, _, err := svc.ProcessRAGMessage(context.Background(), "질문")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process RAG message")
}

func TestProcessChainedWorkflow(t *testing.T) {
	model := &stubLLM{response: "단계 결과"}
	svc := NewChatService(model, &stubRagService{}, nil, nil, noopLogger{})

	result, err := svc.ProcessChainedWorkflow(context.Background(), "원래 질문")

	require.NoError(t, err)
	assert.Equal(t, "단계 결과", result.Step1)
	assert.Equal(t, "단계 결과", result.Step2)
	assert.Equal(t, "단계 결과", result.Final)
	require.Len(t, model.prompts, 3)
	assert.Contains(t, model.prompts[0], "첫 번째 단계")
	assert.Contains(t, model.prompts[1], "두 번째 단계")
	assert.Contains(t, model.prompts[2], "최종 단계")
	assert.Contains(t, model.prompts[2], "원래 질문: 원래 질문")
}

func TestProcessChainedWorkflowFirstStepFails(t *testing.T) {
	model := &stubLLM{err: errors.New("model unavailable")}
	svc := NewChatService(model, &stubRagService{}, nil, nil, noopLogger{})

	_, err := svc.ProcessChainedWorkflow(context.Background(), "질문")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process chained workflow")
}
