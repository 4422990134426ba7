package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// API banners returned on the bare GET endpoints.
	LangGraphAPIInfo = "LangGraph routing API is running!"
	RagAPIInfo       = "RAG (Retrieval-Augmented Generation) API with CSV support is running!"
)
