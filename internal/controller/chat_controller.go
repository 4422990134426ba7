package controller

import (
	"time"

	"chatbot-router-be/internal/constant"
	"chatbot-router-be/internal/dto"
	"chatbot-router-be/internal/pkg/serverutils"
	"chatbot-router-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	RAGChat(ctx *fiber.Ctx) error
	RAGQuery(ctx *fiber.Ctx) error
	ChainedWorkflow(ctx *fiber.Ctx) error
	RouteChat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	ragService  service.IRagService
}

func NewChatController(chatService service.IChatService, ragService service.IRagService) IChatController {
	return &chatController{
		chatService: chatService,
		ragService:  ragService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	lg := r.Group("/langgraph")
	lg.Get("", func(ctx *fiber.Ctx) error {
		return ctx.SendString(constant.LangGraphAPIInfo)
	})
	lg.Post("/chat", c.Chat)
	lg.Post("/rag-chat", c.RAGChat)
	lg.Post("/rag-query", c.RAGQuery)
	lg.Post("/workflow", c.ChainedWorkflow)

	chat := r.Group("/chat")
	chat.Post("/route", c.RouteChat)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil || req.Message == "" {
		return ctx.JSON(dto.ErrorResponse{Error: "Message is required"})
	}

	response, err := c.chatService.ProcessMessage(ctx.Context(), req.Message)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to process message", Details: err.Error()})
	}

	return ctx.JSON(dto.ChatResponse{
		Message:   req.Message,
		Response:  response,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *chatController) RAGChat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil || req.Message == "" {
		return ctx.JSON(dto.ErrorResponse{Error: "Message is required"})
	}

	response, referenced, err := c.chatService.ProcessRAGMessage(ctx.Context(), req.Message)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to process RAG message", Details: err.Error()})
	}

	return ctx.JSON(dto.RAGChatResponse{
		Message:             req.Message,
		Response:            response,
		ReferencedDocuments: referenced,
		Type:                "rag-chat",
		Timestamp:           time.Now().Format(time.RFC3339),
	})
}

func (c *chatController) RAGQuery(ctx *fiber.Ctx) error {
	var req dto.QuestionRequest
	if err := ctx.BodyParser(&req); err != nil || req.Question == "" {
		return ctx.JSON(dto.ErrorResponse{Error: "Question is required"})
	}

	answer, err := c.ragService.RAGQuery(ctx.Context(), req.Question)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to process RAG query", Details: err.Error()})
	}

	return ctx.JSON(dto.RAGQueryResponse{
		Question:  req.Question,
		Answer:    answer,
		Type:      "rag-simple",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *chatController) ChainedWorkflow(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil || req.Message == "" {
		return ctx.JSON(dto.ErrorResponse{Error: "Message is required"})
	}

	result, err := c.chatService.ProcessChainedWorkflow(ctx.Context(), req.Message)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to process chained workflow", Details: err.Error()})
	}

	return ctx.JSON(dto.ChainedWorkflowResponse{
		Message:   req.Message,
		Workflow:  *result,
		Type:      "chained-workflow",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *chatController) RouteChat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Message is required"})
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	state, err := c.chatService.RouteMessage(ctx.Context(), req.Message)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to process message", Details: err.Error()})
	}

	return ctx.JSON(dto.RoutedChatResponse{
		Message:   req.Message,
		Response:  state.FinalResponse,
		Route:     state.RoutingDecision,
		Retries:   state.Retries,
		Accurate:  state.IsAccurate,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
