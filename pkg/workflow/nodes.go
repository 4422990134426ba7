package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatbot-router-be/internal/pkg/logger"
	"chatbot-router-be/pkg/embedding"
	"chatbot-router-be/pkg/llm"
	"chatbot-router-be/pkg/search"
	"chatbot-router-be/pkg/vectorstore"
)

// DocumentStore is the slice of the vector store the workflow needs.
type DocumentStore interface {
	ListCollections(ctx context.Context) ([]string, error)
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]vectorstore.Match, error)
}

// Nodes holds the collaborators every step function closes over.
type Nodes struct {
	LLM      llm.LLMProvider
	Embedder embedding.EmbeddingProvider
	Store    DocumentStore
	Searcher search.Provider
	Log      logger.ILogger

	// MaxRetries bounds the judge -> classify feedback loop.
	MaxRetries int
	// TopK is the nearest-neighbor count for retrieval.
	TopK int
}

func NewNodes(llmProvider llm.LLMProvider, embedder embedding.EmbeddingProvider, store DocumentStore, searcher search.Provider, log logger.ILogger, maxRetries int) *Nodes {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Nodes{
		LLM:        llmProvider,
		Embedder:   embedder,
		Store:      store,
		Searcher:   searcher,
		Log:        log,
		MaxRetries: maxRetries,
		TopK:       5,
	}
}

type routingVerdict struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// Classify asks the model which handler should take the message. Any
// failure resolves to the direct route; this node never returns an error.
func (n *Nodes) Classify(ctx context.Context, s *State) error {
	content := s.LastUserText()

	prompt := fmt.Sprintf(`당신은 사용자 메시지를 분석하여 적절한 처리 방법을 결정하는 라우터입니다.

사용자 메시지: "%s"

다음 옵션 중 가장 적절한 하나를 선택하세요:

1. "direct": 일반적인 질문, 대화, 설명, 추천 등에 대한 답변
2. "retrieval": 문서, 파일, 업로드된 자료, 저장된 데이터, 특정 지식베이스 검색이 필요한 질문
3. "websearch": 최신 정보, 뉴스, 실시간 데이터, 웹에서 검색이 필요한 질문

JSON 형태로만 응답하세요:
{"decision": "선택한_옵션", "reason": "선택 이유"}`, content)

	raw, err := n.LLM.Generate(ctx, prompt)
	if err != nil {
		n.Log.Warn("Workflow", "Routing call failed, falling back to direct", map[string]interface{}{"error": err.Error()})
		s.RoutingDecision = RouteDirect
		return nil
	}

	var verdict routingVerdict
	if err := DecodeModelJSON(raw, &verdict); err != nil || verdict.Decision == "" {
		n.Log.Warn("Workflow", "Unparseable routing verdict, falling back to direct", map[string]interface{}{"raw": raw})
		s.RoutingDecision = RouteDirect
		return nil
	}

	s.RoutingDecision = verdict.Decision
	n.Log.Info("Workflow", "Message routed", map[string]interface{}{
		"decision": verdict.Decision,
		"reason":   verdict.Reason,
	})
	return nil
}

// HandleDirect forwards the whole conversation to the model. This is the one
// handler whose errors propagate: there is no sensible degraded answer when
// the plain model call itself fails.
func (n *Nodes) HandleDirect(ctx context.Context, s *State) error {
	history := make([]llm.Message, 0, len(s.Messages)+1)
	history = append(history, llm.Message{
		Role:    "system",
		Content: fmt.Sprintf("You are a helpful AI assistant. Answer questions directly and concisely. Current time: %s", time.Now().Format(time.RFC3339)),
	})
	history = append(history, s.Messages...)

	reply, err := n.LLM.Chat(ctx, history)
	if err != nil {
		return fmt.Errorf("direct handler: %w", err)
	}

	s.FinalResponse = reply
	s.appendAssistant(reply)
	return nil
}

// HandleRetrieval answers from the vector store. Every external failure
// degrades to a fixed notice substituted for the context; the model is
// still asked to answer, acknowledging the degraded situation.
func (n *Nodes) HandleRetrieval(ctx context.Context, s *State) error {
	query := s.LastUserText()
	vectorContext := n.buildVectorContext(ctx, query)
	s.VectorContext = vectorContext

	var prompt string
	if IsInformativeContext(vectorContext) {
		prompt = fmt.Sprintf(`다음 문서들을 참고하여 사용자의 질문에 답변해주세요:

참고 문서:
%s

사용자 질문: %s

답변:`, vectorContext, query)
	} else {
		prompt = fmt.Sprintf(`문서 검색 결과: %s

사용자 질문: %s

위의 상황을 고려하여 답변해주세요.`, vectorContext, query)
	}

	reply, err := n.LLM.Generate(ctx, prompt)
	if err != nil {
		n.Log.Error("Workflow", "Retrieval answer generation failed", map[string]interface{}{"error": err.Error()})
		fallback := FallbackMessage(FallbackRetrievalError)
		s.VectorContext = ""
		s.FinalResponse = fallback
		s.appendAssistant(fallback)
		return nil
	}

	s.FinalResponse = reply
	s.appendAssistant(reply)
	return nil
}

func (n *Nodes) buildVectorContext(ctx context.Context, query string) string {
	collections, err := n.Store.ListCollections(ctx)
	if err != nil {
		n.Log.Error("Workflow", "Vector store unreachable", map[string]interface{}{"error": err.Error()})
		return FallbackMessage(FallbackStoreConnection)
	}
	if len(collections) == 0 {
		return FallbackMessage(FallbackNoCollections)
	}

	// Single-collection design: always search the first one.
	collection := collections[0]

	embedded, err := n.Embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		n.Log.Error("Workflow", "Query embedding failed", map[string]interface{}{"error": err.Error()})
		return FallbackMessage(FallbackRetrievalError)
	}

	matches, err := n.Store.Query(ctx, collection, embedded.Embedding.Values, n.TopK)
	if err != nil {
		n.Log.Error("Workflow", "Collection query failed", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		return FallbackMessage(FallbackCollectionAccess)
	}
	if len(matches) == 0 {
		return FallbackMessage(FallbackNoDocuments)
	}

	parts := make([]string, 0, len(matches))
	for i, m := range matches {
		header := fmt.Sprintf("[문서 %d] (유사도: %.3f, 출처: %s", i+1, 1-m.Distance, m.Source)
		if m.Page != nil {
			header += fmt.Sprintf(", 페이지: %d", *m.Page)
		}
		header += ")"
		parts = append(parts, header+"\n"+m.Document)
	}
	return strings.Join(parts, "\n\n")
}

// HandleWebSearch answers from live web results. Failures anywhere in the
// path degrade to a fixed apology; the node never returns an error.
func (n *Nodes) HandleWebSearch(ctx context.Context, s *State) error {
	query := s.LastUserText()

	var searchResults string
	results, err := n.Searcher.Search(ctx, query)
	if err != nil {
		n.Log.Error("Workflow", "Web search failed", map[string]interface{}{"error": err.Error()})
	} else {
		searchResults = search.FormatResults(results)
	}
	s.SearchResults = searchResults

	var prompt string
	if searchResults != "" {
		prompt = fmt.Sprintf(`Based on the following web search results, please answer the user's question:

Search Results:
%s

Question: %s

Answer:`, searchResults, query)
	} else {
		prompt = fmt.Sprintf("I couldn't perform a web search for: %s. Please try rephrasing your question.", query)
	}

	reply, err := n.LLM.Generate(ctx, prompt)
	if err != nil {
		n.Log.Error("Workflow", "Web search answer generation failed", map[string]interface{}{"error": err.Error()})
		fallback := FallbackMessage(FallbackWebSearchError)
		s.SearchResults = ""
		s.FinalResponse = fallback
		s.appendAssistant(fallback)
		return nil
	}

	s.FinalResponse = reply
	s.appendAssistant(reply)
	return nil
}

type judgeVerdict struct {
	Result string `json:"result"`
	Reason string `json:"reason"`
}

// JudgeWebSearchResult asks the model to self-critique the web-search
// answer. Any failure counts as "not accurate": re-routing is cheaper
// than trusting an unverified answer.
func (n *Nodes) JudgeWebSearchResult(ctx context.Context, s *State) error {
	prompt := fmt.Sprintf(`아래는 웹 검색 결과와 그에 대한 답변입니다.
이 답변이 사용자의 질문에 대해 충분히 정확하고 신뢰할 수 있는지 "yes" 또는 "no"로만 답변하세요.

질문: %s
웹 검색 결과: %s
답변: %s

정확합니까? {"result": "yes" 또는 "no", "reason": "간단한 이유"}`, s.FirstUserText(), s.SearchResults, s.FinalResponse)

	raw, err := n.LLM.Generate(ctx, prompt)
	if err != nil {
		n.Log.Warn("Workflow", "Judge call failed, treating answer as inaccurate", map[string]interface{}{"error": err.Error()})
		s.IsAccurate = false
		return nil
	}

	var verdict judgeVerdict
	if err := DecodeModelJSON(raw, &verdict); err != nil {
		n.Log.Warn("Workflow", "Unparseable judge verdict, treating answer as inaccurate", map[string]interface{}{"raw": raw})
		s.IsAccurate = false
		return nil
	}

	s.IsAccurate = verdict.Result == "yes"
	n.Log.Info("Workflow", "Judge verdict", map[string]interface{}{
		"accurate": s.IsAccurate,
		"reason":   verdict.Reason,
		"retries":  s.Retries,
	})
	return nil
}

// RouteToHandler maps the routing decision to a handler node. Anything
// unrecognized falls through to the direct handler.
func (n *Nodes) RouteToHandler(s *State) string {
	switch s.RoutingDecision {
	case RouteRetrieval:
		return NodeRetrieval
	case RouteWebSearch:
		return NodeWebSearch
	default:
		return NodeDirect
	}
}

// JudgeEdge ends the run on an accurate answer or an exhausted retry
// budget; otherwise it discards the rejected answer and loops back to
// classification.
func (n *Nodes) JudgeEdge(s *State) string {
	if s.IsAccurate {
		return GraphEnd
	}
	if s.Retries >= n.MaxRetries {
		n.Log.Warn("Workflow", "Retry budget exhausted, keeping last answer", map[string]interface{}{"retries": s.Retries})
		return GraphEnd
	}
	s.Retries++
	s.FinalResponse = ""
	s.SearchResults = ""
	s.IsAccurate = false
	return NodeClassify
}
