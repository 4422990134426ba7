package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chatbot-router-be/internal/constant"
	"chatbot-router-be/internal/dto"
	"chatbot-router-be/internal/pkg/serverutils"
	"chatbot-router-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var allowedUploadExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".csv": true,
}

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	CSVAnalysis(ctx *fiber.Ctx) error
	CSVQuery(ctx *fiber.Ctx) error
	ResetCollection(ctx *fiber.Ctx) error
}

type documentController struct {
	ragService  service.IRagService
	uploadDir   string
	adminSecret string
}

func NewDocumentController(ragService service.IRagService, uploadDir, adminSecret string) IDocumentController {
	return &documentController{
		ragService:  ragService,
		uploadDir:   uploadDir,
		adminSecret: adminSecret,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	rag := r.Group("/rag")
	rag.Get("", func(ctx *fiber.Ctx) error {
		return ctx.SendString(constant.RagAPIInfo)
	})
	rag.Post("/upload", c.Upload)
	rag.Post("/query", c.Query)
	rag.Get("/search", c.Search)
	rag.Get("/documents", c.ListDocuments)
	rag.Get("/csv-analysis", c.CSVAnalysis)
	rag.Post("/csv-query", c.CSVQuery)
	rag.Post("/reset-collection", serverutils.AdminJwtMiddleware(c.adminSecret), c.ResetCollection)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "업로드된 파일이 없습니다"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExtensions[ext] {
		return ctx.JSON(dto.ErrorResponse{Error: "PDF, TXT, CSV 파일만 업로드할 수 있습니다!"})
	}

	if err := os.MkdirAll(c.uploadDir, 0o755); err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "문서 처리에 실패했습니다", Details: err.Error()})
	}

	tempPath := filepath.Join(c.uploadDir, uuid.New().String()+ext)
	if err := ctx.SaveFile(file, tempPath); err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "문서 처리에 실패했습니다", Details: err.Error()})
	}

	result, err := c.ragService.AddDocument(ctx.Context(), tempPath, file.Filename, file.Size)
	if err != nil {
		os.Remove(tempPath)
		return ctx.JSON(dto.ErrorResponse{Error: "문서 처리에 실패했습니다", Details: err.Error()})
	}

	return ctx.JSON(dto.UploadResponse{
		Message:   result,
		Filename:  file.Filename,
		Size:      file.Size,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *documentController) Query(ctx *fiber.Ctx) error {
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
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("query")
	if query == "" {
		return ctx.JSON(dto.ErrorResponse{Error: "Query is required"})
	}
	topK := ctx.QueryInt("topK", 5)

	results, err := c.ragService.SearchDocuments(ctx.Context(), query, topK)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to search documents", Details: err.Error()})
	}

	return ctx.JSON(dto.SearchResponse{
		Query:     query,
		Results:   results,
		Count:     len(results),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (c *documentController) ListDocuments(ctx *fiber.Ctx) error {
	res, err := c.ragService.ListDocuments(ctx.Context())
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to list documents", Details: err.Error()})
	}
	return ctx.JSON(res)
}

func (c *documentController) CSVAnalysis(ctx *fiber.Ctx) error {
	fileName := ctx.Query("fileName")
	if fileName == "" {
		return ctx.JSON(dto.ErrorResponse{Error: "File name is required"})
	}

	analysis, err := c.ragService.GetCSVAnalysis(ctx.Context(), fileName)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to analyze CSV file", Details: err.Error()})
	}
	return ctx.JSON(analysis)
}

func (c *documentController) CSVQuery(ctx *fiber.Ctx) error {
	var req dto.CSVQueryRequest
	if err := ctx.BodyParser(&req); err != nil || req.Question == "" {
		return ctx.JSON(dto.ErrorResponse{Error: "Question is required"})
	}

	searchQuery := req.Question
	if req.FileName != "" {
		searchQuery = fmt.Sprintf("파일 %s에서 %s", req.FileName, req.Question)
	}

	results, err := c.ragService.SearchDocuments(ctx.Context(), searchQuery, 5)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to process CSV query", Details: err.Error()})
	}

	var csvSources []string
	for _, r := range results {
		source, _ := r.Metadata["source"].(string)
		if strings.HasSuffix(strings.ToLower(source), ".csv") {
			csvSources = append(csvSources, source)
		}
	}

	if len(csvSources) == 0 {
		return ctx.JSON(fiber.Map{
			"error":      "No CSV data found for this query",
			"suggestion": "Try uploading a CSV file first or check your query",
		})
	}

	answer, err := c.ragService.RAGQuery(ctx.Context(), req.Question)
	if err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "Failed to process CSV query", Details: err.Error()})
	}

	return ctx.JSON(dto.CSVQueryResponse{
		Question:   req.Question,
		Answer:     answer,
		CSVSources: csvSources,
		Type:       "csv-query",
		Timestamp:  time.Now().Format(time.RFC3339),
	})
}

func (c *documentController) ResetCollection(ctx *fiber.Ctx) error {
	if err := c.ragService.ResetCollection(ctx.Context()); err != nil {
		return ctx.JSON(dto.ErrorResponse{Error: "컬렉션 리셋에 실패했습니다", Details: err.Error()})
	}

	return ctx.JSON(dto.ResetCollectionResponse{
		Message:   "컬렉션이 성공적으로 리셋되었습니다.",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
