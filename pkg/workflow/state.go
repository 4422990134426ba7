package workflow

import (
	"chatbot-router-be/pkg/llm"
)

// Routing labels the classifier may choose.
const (
	RouteDirect    = "direct"
	RouteRetrieval = "retrieval"
	RouteWebSearch = "websearch"
)

// Node names of the routing graph.
const (
	NodeClassify  = "classify"
	NodeDirect    = "direct_handler"
	NodeRetrieval = "retrieval_handler"
	NodeWebSearch = "websearch_handler"
	NodeJudge     = "judge_websearch_result"
)

// State is the single mutable record threaded through one workflow run.
// Each run owns its state exclusively; it is never shared across requests.
type State struct {
	Messages        []llm.Message
	RoutingDecision string
	VectorContext   string
	SearchResults   string
	FinalResponse   string
	IsAccurate      bool
	Retries         int
	Trace           []string
}

// LastUserText returns the content of the most recent turn.
func (s *State) LastUserText() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}

// FirstUserText returns the content of the first turn, the original question.
func (s *State) FirstUserText() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[0].Content
}

func (s *State) appendAssistant(content string) {
	s.Messages = append(s.Messages, llm.Message{Role: "assistant", Content: content})
}
