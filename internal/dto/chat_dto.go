package dto

// ChatRequest is the body of every message-driven endpoint.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type QuestionRequest struct {
	Question string `json:"question" validate:"required"`
}

type ChatResponse struct {
	Message   string `json:"message"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

type ReferencedDocument struct {
	Source    string  `json:"source"`
	Content   string  `json:"content"`
	Relevance float64 `json:"relevance"`
}

type RAGChatResponse struct {
	Message             string               `json:"message"`
	Response            string               `json:"response"`
	ReferencedDocuments []ReferencedDocument `json:"referencedDocuments"`
	Type                string               `json:"type"`
	Timestamp           string               `json:"timestamp"`
}

type RAGQueryResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Type      string `json:"type,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ChainedWorkflowResult is the three-step analyze/collect/synthesize chain.
type ChainedWorkflowResult struct {
	Step1 string `json:"step1"`
	Step2 string `json:"step2"`
	Final string `json:"final"`
}

type ChainedWorkflowResponse struct {
	Message   string                `json:"message"`
	Workflow  ChainedWorkflowResult `json:"workflow"`
	Type      string                `json:"type"`
	Timestamp string                `json:"timestamp"`
}

// RoutedChatResponse is the answer of the full routing graph.
type RoutedChatResponse struct {
	Message   string `json:"message"`
	Response  string `json:"response"`
	Route     string `json:"route"`
	Retries   int    `json:"retries"`
	Accurate  bool   `json:"accurate"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the uniform error body; Details is omitted when empty.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
