package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"chatbot-router-be/pkg/embedding"
	"chatbot-router-be/pkg/llm"
	"chatbot-router-be/pkg/search"
	"chatbot-router-be/pkg/vectorstore"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// fakeLLM dispatches on the prompt text so one fake can serve the
// classifier, the handlers and the judge in a single run.
type fakeLLM struct {
	generateFn      func(prompt string) (string, error)
	chatFn          func(history []llm.Message) (string, error)
	generatePrompts []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.generatePrompts = append(f.generatePrompts, prompt)
	if f.generateFn == nil {
		return "", errors.New("no generate script")
	}
	return f.generateFn(prompt)
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	if f.chatFn == nil {
		return "", errors.New("no chat script")
	}
	return f.chatFn(history)
}

type fakeStore struct {
	collections []string
	listErr     error
	matches     []vectorstore.Match
	queryErr    error
}

func (f *fakeStore) ListCollections(context.Context) ([]string, error) {
	return f.collections, f.listErr
}

func (f *fakeStore) Query(context.Context, string, []float32, int) ([]vectorstore.Match, error) {
	return f.matches, f.queryErr
}

type fakeSearcher struct {
	results []search.Result
	err     error
}

func (f *fakeSearcher) Search(context.Context, string) ([]search.Result, error) {
	return f.results, f.err
}

func isRoutingPrompt(p string) bool { return strings.Contains(p, "라우터입니다") }
func isJudgePrompt(p string) bool   { return strings.Contains(p, "정확합니까") }

func newTestNodes(t *testing.T, model *fakeLLM, store DocumentStore, searcher search.Provider, maxRetries int) *Nodes {
	t.Helper()
	if store == nil {
		store = &fakeStore{}
	}
	if searcher == nil {
		searcher = &fakeSearcher{}
	}
	return NewNodes(model, embedding.NewHashProvider(384), store, searcher, nopLogger{}, maxRetries)
}

func TestClassifierFailureFallsBackToDirect(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "", errors.New("model unreachable")
		},
	}
	nodes := newTestNodes(t, model, nil, nil, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "오늘 날씨 어때?"}}}
	err := nodes.Classify(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, RouteDirect, s.RoutingDecision)
}

func TestClassifierInvalidJSONFallsBackToDirect(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "I would route this to websearch.", nil
		},
	}
	nodes := newTestNodes(t, model, nil, nil, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "anything"}}}
	err := nodes.Classify(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, RouteDirect, s.RoutingDecision)
}

func TestRouteToHandler(t *testing.T) {
	nodes := newTestNodes(t, &fakeLLM{}, nil, nil, 2)

	tests := []struct {
		decision string
		want     string
	}{
		{RouteDirect, NodeDirect},
		{RouteRetrieval, NodeRetrieval},
		{RouteWebSearch, NodeWebSearch},
		{"", NodeDirect},
		{"vectordb", NodeDirect},
	}

	for _, tt := range tests {
		t.Run("decision="+tt.decision, func(t *testing.T) {
			s := &State{RoutingDecision: tt.decision}
			assert.Equal(t, tt.want, nodes.RouteToHandler(s))
		})
	}
}

func TestRetrievalWithNoCollections(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "업로드된 문서가 없어 일반 지식으로 답변드립니다.", nil
		},
	}
	nodes := newTestNodes(t, model, &fakeStore{}, nil, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "test"}}}
	err := nodes.HandleRetrieval(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, FallbackMessage(FallbackNoCollections), s.VectorContext)
	assert.NotEmpty(t, s.FinalResponse)
	if assert.Len(t, model.generatePrompts, 1) {
		assert.Contains(t, model.generatePrompts[0], "위의 상황을 고려하여")
		assert.NotContains(t, model.generatePrompts[0], "다음 문서들을 참고하여")
	}
}

func TestRetrievalFormatsMatches(t *testing.T) {
	page := 3
	store := &fakeStore{
		collections: []string{"documents"},
		matches: []vectorstore.Match{
			{Document: "첫 번째 본문", Source: "guide.pdf", Page: &page, Distance: 0.2},
			{Document: "두 번째 본문", Source: "notes.txt", Distance: 0.5},
		},
	}
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "문서 기반 답변입니다.", nil
		},
	}
	nodes := newTestNodes(t, model, store, nil, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "가이드 내용 알려줘"}}}
	err := nodes.HandleRetrieval(context.Background(), s)

	assert.NoError(t, err)
	assert.Contains(t, s.VectorContext, "[문서 1] (유사도: 0.800, 출처: guide.pdf, 페이지: 3)")
	assert.Contains(t, s.VectorContext, "[문서 2] (유사도: 0.500, 출처: notes.txt)")
	assert.Contains(t, s.VectorContext, "첫 번째 본문")
	if assert.Len(t, model.generatePrompts, 1) {
		assert.Contains(t, model.generatePrompts[0], "다음 문서들을 참고하여")
	}
	assert.Equal(t, "문서 기반 답변입니다.", s.FinalResponse)
	assert.Equal(t, "assistant", s.Messages[len(s.Messages)-1].Role)
}

func TestRetrievalStoreUnreachableDegrades(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "저장소에 연결하지 못했습니다.", nil
		},
	}
	nodes := newTestNodes(t, model, store, nil, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "test"}}}
	err := nodes.HandleRetrieval(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, FallbackMessage(FallbackStoreConnection), s.VectorContext)
}

func TestWebSearchToolFailureStillAnswers(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "검색 없이 아는 범위에서 답변드립니다.", nil
		},
	}
	nodes := newTestNodes(t, model, nil, &fakeSearcher{err: errors.New("dns failure")}, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "최신 뉴스"}}}
	err := nodes.HandleWebSearch(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, "", s.SearchResults)
	if assert.Len(t, model.generatePrompts, 1) {
		assert.Contains(t, model.generatePrompts[0], "I couldn't perform a web search")
	}
}

func TestWebSearchTotalFailureDegrades(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "", errors.New("model unreachable")
		},
	}
	nodes := newTestNodes(t, model, nil, &fakeSearcher{err: errors.New("dns failure")}, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "최신 뉴스"}}}
	err := nodes.HandleWebSearch(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, FallbackMessage(FallbackWebSearchError), s.FinalResponse)
	assert.Equal(t, "", s.SearchResults)
	assert.Equal(t, FallbackMessage(FallbackWebSearchError), s.Messages[len(s.Messages)-1].Content)
}

func TestJudgeNoVerdict(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return `{"result": "no", "reason": "insufficient"}`, nil
		},
	}
	nodes := newTestNodes(t, model, nil, nil, 2)

	s := &State{
		Messages:      []llm.Message{{Role: "user", Content: "질문"}},
		SearchResults: "결과",
		FinalResponse: "답변",
	}
	err := nodes.JudgeWebSearchResult(context.Background(), s)

	assert.NoError(t, err)
	assert.False(t, s.IsAccurate)
	assert.Equal(t, NodeClassify, nodes.JudgeEdge(s))
	assert.Equal(t, 1, s.Retries)
	assert.Equal(t, "", s.FinalResponse)
	assert.Equal(t, "", s.SearchResults)
}

func TestJudgeFailureDefaultsInaccurate(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(string) (string, error) {
			return "maybe?", nil
		},
	}
	nodes := newTestNodes(t, model, nil, nil, 2)

	s := &State{Messages: []llm.Message{{Role: "user", Content: "질문"}}}
	err := nodes.JudgeWebSearchResult(context.Background(), s)

	assert.NoError(t, err)
	assert.False(t, s.IsAccurate)
}

func TestJudgeEdgeStopsAtRetryCap(t *testing.T) {
	nodes := newTestNodes(t, &fakeLLM{}, nil, nil, 2)

	s := &State{IsAccurate: false, Retries: 2}
	assert.Equal(t, GraphEnd, nodes.JudgeEdge(s))

	s = &State{IsAccurate: true, Retries: 0}
	assert.Equal(t, GraphEnd, nodes.JudgeEdge(s))
}

func TestWorkflowAllNoJudgeTerminates(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(prompt string) (string, error) {
			switch {
			case isRoutingPrompt(prompt):
				return `{"decision": "websearch", "reason": "needs fresh data"}`, nil
			case isJudgePrompt(prompt):
				return `{"result": "no", "reason": "insufficient"}`, nil
			default:
				return "웹 검색 기반 답변입니다.", nil
			}
		},
	}
	searcher := &fakeSearcher{results: []search.Result{{Title: "hit", URL: "https://example.com", Snippet: "snippet"}}}
	nodes := newTestNodes(t, model, nil, searcher, 2)
	wf := New(nodes, 0, 0)

	var trace []string
	s, err := wf.Run(context.Background(),
		[]llm.Message{{Role: "user", Content: "오늘 환율 알려줘"}},
		func(node string, _ *State) { trace = append(trace, node) })

	assert.NoError(t, err)
	assert.Equal(t, 2, s.Retries)
	assert.False(t, s.IsAccurate)
	// Three full websearch passes: the initial one plus two retries.
	assert.Equal(t, 3, countOf(trace, NodeClassify))
	assert.Equal(t, 3, countOf(trace, NodeWebSearch))
	assert.Equal(t, 3, countOf(trace, NodeJudge))
}

func TestWorkflowJudgeLoopThenAccurate(t *testing.T) {
	judgeCalls := 0
	model := &fakeLLM{
		generateFn: func(prompt string) (string, error) {
			switch {
			case isRoutingPrompt(prompt):
				return `{"decision": "websearch", "reason": "needs fresh data"}`, nil
			case isJudgePrompt(prompt):
				judgeCalls++
				if judgeCalls == 1 {
					return `{"result": "no", "reason": "stale"}`, nil
				}
				return `{"result": "yes", "reason": "confirmed"}`, nil
			default:
				return "검증된 답변입니다.", nil
			}
		},
	}
	searcher := &fakeSearcher{results: []search.Result{{Title: "hit", URL: "https://example.com", Snippet: "snippet"}}}
	nodes := newTestNodes(t, model, nil, searcher, 2)
	wf := New(nodes, 0, 0)

	s, err := wf.Run(context.Background(),
		[]llm.Message{{Role: "user", Content: "오늘 날씨 어때?"}})

	assert.NoError(t, err)
	assert.True(t, s.IsAccurate)
	assert.Equal(t, 1, s.Retries)
	assert.Equal(t, "검증된 답변입니다.", s.FinalResponse)
	assert.Equal(t, []string{
		NodeClassify, NodeWebSearch, NodeJudge,
		NodeClassify, NodeWebSearch, NodeJudge,
	}, s.Trace)
}

func TestWorkflowDirectRoute(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(prompt string) (string, error) {
			return `{"decision": "direct", "reason": "small talk"}`, nil
		},
		chatFn: func(history []llm.Message) (string, error) {
			return "안녕하세요!", nil
		},
	}
	nodes := newTestNodes(t, model, nil, nil, 2)
	wf := New(nodes, 0, 0)

	s, err := wf.Run(context.Background(), []llm.Message{{Role: "user", Content: "안녕"}})

	assert.NoError(t, err)
	assert.Equal(t, RouteDirect, s.RoutingDecision)
	assert.Equal(t, "안녕하세요!", s.FinalResponse)
	assert.Equal(t, []string{NodeClassify, NodeDirect}, s.Trace)
}

func TestWorkflowDirectHandlerErrorPropagates(t *testing.T) {
	model := &fakeLLM{
		generateFn: func(prompt string) (string, error) {
			return `{"decision": "direct", "reason": "small talk"}`, nil
		},
		chatFn: func([]llm.Message) (string, error) {
			return "", errors.New("model unreachable")
		},
	}
	nodes := newTestNodes(t, model, nil, nil, 2)
	wf := New(nodes, 0, 0)

	_, err := wf.Run(context.Background(), []llm.Message{{Role: "user", Content: "안녕"}})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "direct handler")
}

func countOf(trace []string, node string) int {
	n := 0
	for _, t := range trace {
		if t == node {
			n++
		}
	}
	return n
}
