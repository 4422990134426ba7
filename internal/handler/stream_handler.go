package handler

import (
	"context"
	"time"

	"chatbot-router-be/internal/pkg/logger"
	"chatbot-router-be/internal/service"
	"chatbot-router-be/pkg/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatStreamHandler streams routing-graph step events over a websocket so
// the chat UI can show which node is running while the answer is produced.
type ChatStreamHandler struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatStreamHandler(chatService service.IChatService, log logger.ILogger) *ChatStreamHandler {
	return &ChatStreamHandler{
		chatService: chatService,
		logger:      log,
	}
}

type streamRequest struct {
	Message string `json:"message"`
}

type streamEvent struct {
	Type     string `json:"type"` // "step" | "final" | "error"
	Node     string `json:"node,omitempty"`
	Route    string `json:"route,omitempty"`
	Response string `json:"response,omitempty"`
	Retries  int    `json:"retries,omitempty"`
	Accurate bool   `json:"accurate,omitempty"`
	Error    string `json:"error,omitempty"`
	At       string `json:"at"`
}

func (h *ChatStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat", h.ServeWs)
}

func (h *ChatStreamHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatStreamHandler", "WebSocket session started", nil)
		defer h.logger.Info("ChatStreamHandler", "WebSocket session ended", nil)

		for {
			var req streamRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if req.Message == "" {
				h.writeEvent(conn, streamEvent{Type: "error", Error: "Message is required"})
				continue
			}

			h.handleMessage(conn, req.Message)
		}
	})(c)
}

func (h *ChatStreamHandler) handleMessage(conn *websocket.Conn, message string) {
	state, err := h.chatService.RouteMessage(context.Background(), message,
		func(node string, s *workflow.State) {
			h.writeEvent(conn, streamEvent{
				Type:    "step",
				Node:    node,
				Route:   s.RoutingDecision,
				Retries: s.Retries,
			})
		})
	if err != nil {
		h.writeEvent(conn, streamEvent{Type: "error", Error: err.Error()})
		return
	}

	h.writeEvent(conn, streamEvent{
		Type:     "final",
		Route:    state.RoutingDecision,
		Response: state.FinalResponse,
		Retries:  state.Retries,
		Accurate: state.IsAccurate,
	})
}

func (h *ChatStreamHandler) writeEvent(conn *websocket.Conn, evt streamEvent) {
	evt.At = time.Now().Format(time.RFC3339)
	if err := conn.WriteJSON(evt); err != nil {
		h.logger.Warn("ChatStreamHandler", "Failed to write event", map[string]interface{}{"error": err.Error()})
	}
}
