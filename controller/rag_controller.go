package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	// Import your local packages using your module path
	"github/itish2003/legalrag/models"
	"github/itish2003/legalrag/services"
)

// RAGController handles the HTTP requests for the legal RAG API. It depends
// on the RAGService to perform the actual business logic.
type RAGController struct {
	ragService services.RAGService
}

// NewRAGController is a constructor function that creates a new RAGController.
// This is called from main.go to inject the service dependency.
func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// QueryRAG is the Gin handler for the POST /api/v1/query endpoint.
// It orchestrates the retrieval and answer pipeline by calling the service layer.
func (c *RAGController) QueryRAG(ctx *gin.Context) {
	var req models.QueryTextRequest

	// Bind the request JSON to our QueryTextRequest struct.
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Query must not be empty"})
		return
	}

	// Delegate the retrieval and generation pipeline to the service layer.
	// We extract the standard context from Gin's context for portability.
	response, err := c.ragService.Query(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer query"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ReloadCorpus is the Gin handler for the POST /api/v1/reload endpoint.
// It re-runs the document loader over the corpus directory and indexes the result.
func (c *RAGController) ReloadCorpus(ctx *gin.Context) {
	response, err := c.ragService.ReloadCorpus(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload corpus"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetDocuments is the Gin handler for the GET /api/v1/documents endpoint.
func (c *RAGController) GetDocuments(ctx *gin.Context) {
	response, err := c.ragService.GetAllDocuments(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documents"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Status is the Gin handler for the GET /api/v1/status endpoint.
func (c *RAGController) Status(ctx *gin.Context) {
	response, err := c.ragService.Status(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read status"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
