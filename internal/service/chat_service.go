package service

import (
	"context"
	"fmt"

	"chatbot-router-be/internal/dto"
	"chatbot-router-be/internal/pkg/logger"
	"chatbot-router-be/pkg/events"
	"chatbot-router-be/pkg/llm"
	pktNats "chatbot-router-be/pkg/nats"
	"chatbot-router-be/pkg/workflow"
)

type IChatService interface {
	ProcessMessage(ctx context.Context, message string) (string, error)
	ProcessRAGMessage(ctx context.Context, message string) (string, []dto.ReferencedDocument, error)
	ProcessChainedWorkflow(ctx context.Context, message string) (*dto.ChainedWorkflowResult, error)
	RouteMessage(ctx context.Context, message string, hooks ...workflow.StepHook[*workflow.State]) (*workflow.State, error)
}

type chatService struct {
	llmProvider llm.LLMProvider
	ragService  IRagService
	wf          *workflow.Workflow
	natsPub     *pktNats.Publisher
	logger      logger.ILogger
}

func NewChatService(
	llmProvider llm.LLMProvider,
	ragService IRagService,
	wf *workflow.Workflow,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		llmProvider: llmProvider,
		ragService:  ragService,
		wf:          wf,
		natsPub:     natsPub,
		logger:      log,
	}
}

func (s *chatService) ProcessMessage(ctx context.Context, message string) (string, error) {
	response, err := s.llmProvider.Generate(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to process message: %w", err)
	}
	return response, nil
}

// ProcessRAGMessage grounds the answer in the uploaded documents and
// reports which ones it leaned on.
func (s *chatService) ProcessRAGMessage(ctx context.Context, message string) (string, []dto.ReferencedDocument, error) {
	relevantDocs, err := s.ragService.SearchDocuments(ctx, message, 3)
	if err != nil {
		return "", nil, fmt.Errorf("failed to process RAG message: %w", err)
	}

	if len(relevantDocs) == 0 {
		prompt := fmt.Sprintf(`다음은 사용자의 질문입니다: %s

업로드된 문서에서 관련 정보를 찾을 수 없습니다. 일반적인 지식으로 답변해드리겠습니다.`, message)

		response, err := s.llmProvider.Generate(ctx, prompt)
		if err != nil {
			return "", nil, fmt.Errorf("failed to process RAG message: %w", err)
		}
		return response, []dto.ReferencedDocument{}, nil
	}

	contextText := ""
	for i, doc := range relevantDocs {
		if i > 0 {
			contextText += "\n\n"
		}
		contextText += fmt.Sprintf("[문서 %d] %s", i+1, doc.Content)
	}

	prompt := fmt.Sprintf(`다음은 업로드된 문서들의 내용입니다:

%s

이 문서들을 참고하여 다음 질문에 답변해주세요:

질문: %s

답변 시 다음 사항을 고려해주세요:
1. 제공된 문서 내용을 기반으로 정확한 답변을 제공하세요
2. 문서에 없는 내용은 일반적인 지식으로 보완할 수 있습니다
3. 답변의 출처가 되는 문서를 명시해주세요
4. 문서 내용을 그대로 복사하지 말고 이해한 내용을 바탕으로 답변해주세요

답변:`, contextText, message)

	response, err := s.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("failed to process RAG message: %w", err)
	}

	referenced := make([]dto.ReferencedDocument, 0, len(relevantDocs))
	for i, doc := range relevantDocs {
		source, _ := doc.Metadata["source"].(string)
		if source == "" {
			source = fmt.Sprintf("문서 %d", i+1)
		}

		content := doc.Content
		if len([]rune(content)) > 200 {
			content = string([]rune(content)[:200]) + "..."
		}

		relevance := 0.8
		if doc.Distance != 0 {
			relevance = 1 - doc.Distance
		}

		referenced = append(referenced, dto.ReferencedDocument{
			Source:    source,
			Content:   content,
			Relevance: relevance,
		})
	}

	return response, referenced, nil
}

// ProcessChainedWorkflow runs the fixed analyze -> collect -> synthesize
// chain, each step feeding the next.
func (s *chatService) ProcessChainedWorkflow(ctx context.Context, message string) (*dto.ChainedWorkflowResult, error) {
	step1Prompt := fmt.Sprintf("첫 번째 단계: 다음 질문을 분석하고 핵심 키워드를 추출해주세요: %s", message)
	step1, err := s.llmProvider.Generate(ctx, step1Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to process chained workflow: %w", err)
	}

	step2Prompt := fmt.Sprintf("두 번째 단계: 다음 키워드를 바탕으로 관련 정보를 정리해주세요: %s", step1)
	step2, err := s.llmProvider.Generate(ctx, step2Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to process chained workflow: %w", err)
	}

	finalPrompt := fmt.Sprintf(`최종 단계: 다음 정보를 종합하여 원래 질문에 대한 완성된 답변을 제공해주세요.

원래 질문: %s
분석된 키워드: %s
관련 정보: %s`, message, step1, step2)
	final, err := s.llmProvider.Generate(ctx, finalPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to process chained workflow: %w", err)
	}

	return &dto.ChainedWorkflowResult{
		Step1: step1,
		Step2: step2,
		Final: final,
	}, nil
}

// RouteMessage runs the full routing graph over a single user message.
func (s *chatService) RouteMessage(ctx context.Context, message string, hooks ...workflow.StepHook[*workflow.State]) (*workflow.State, error) {
	state, err := s.wf.Run(ctx, []llm.Message{{Role: "user", Content: message}}, hooks...)
	if err != nil {
		return nil, err
	}

	if s.natsPub != nil {
		evt := events.NewWorkflowCompleted(state.RoutingDecision, state.Retries, state.IsAccurate)
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "Failed to publish workflow event", map[string]interface{}{"error": err.Error()})
		}
	}

	return state, nil
}
