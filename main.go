package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github/itish2003/legalrag/controller"
	"github/itish2003/legalrag/services"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"
)

func main() {
	// Create HTTP client properly
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	corpusDir := getEnv("CORPUS_DIR", "data")
	collectionName := getEnv("CHROMA_COLLECTION", "omani-legal-docs")
	ollamaURL := getEnv("OLLAMA_URL", "http://localhost:11434")
	embedModel := getEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text:v1.5")
	llmModel := getEnv("OLLAMA_LLM_MODEL", "llama3")
	geminiModel := getEnv("GEMINI_MODEL", "gemini-2.5-flash")
	topK, _ := strconv.Atoi(getEnv("TOP_K", "4"))

	// Resolve backend availability once, up front, and thread the result
	// through the constructors.
	capabilities := services.Capabilities{
		EmbeddingBackend:  services.ProbeOllama(httpClient, ollamaURL),
		GenerationBackend: false,
	}
	if !capabilities.EmbeddingBackend {
		log.Println("WARNING: Ollama is not reachable. Indexing and similarity search will be unavailable.")
	}

	// Create Chroma client using v2 API
	chromaClient, err := chromago.NewHTTPClient()
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}

	// Ensure we close the client to release resources like local embedding functions
	defer func() {
		if errorss := chromaClient.Close(); errorss != nil {
			log.Printf("Warning: Failed to close chroma client: %v", errorss)
		}
	}()

	// Get or create collection using v2 API
	collection, err := getOrCreateCollectionV2(chromaClient, collectionName)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create collection: %v", err)
	}

	// Pick the generation backend: the local Ollama model when it is
	// running, otherwise Gemini when an API key is configured. Both sit
	// behind the same Generator interface.
	var generator services.Generator
	if capabilities.EmbeddingBackend {
		generator = services.NewOllamaGenerator(httpClient, ollamaURL, llmModel)
		capabilities.GenerationBackend = true
		log.Printf("Using Ollama generation model: %s", llmModel)
	} else if os.Getenv("GEMINI_API_KEY") != "" {
		geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
		}
		generator = services.NewGeminiGenerator(geminiClient, geminiModel)
		capabilities.GenerationBackend = true
		log.Println("Successfully connected to Google Gemini.")
	} else {
		log.Println("WARNING: No generation backend available. Queries will return retrieved context only.")
	}

	loader := services.NewLegalDocumentLoader(corpusDir)
	embedder := services.NewDocumentEmbedder(httpClient, collection, ollamaURL, embedModel, capabilities.EmbeddingBackend)
	retriever := services.NewLegalDocumentRetriever(embedder, loader, topK)
	ragService := services.NewRAGService(loader, embedder, retriever, generator, capabilities)
	ragController := controller.NewRAGController(ragService)

	// Sync the corpus into the index and keep watching it for changes.
	indexer := services.NewCorpusIndexingService(embedder, loader)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if capabilities.EmbeddingBackend {
		go func() {
			indexer.ScanAndIndexDirectory(ctx, corpusDir)
			indexer.WatchDirectory(ctx, corpusDir)
		}()
	}

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware for testing
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Add health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Legal RAG API",
			"version": "1.0.0",
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", ragController.QueryRAG)        // Endpoint to ask a question
		apiV1.POST("/reload", ragController.ReloadCorpus)   // Endpoint to rescan the corpus
		apiV1.GET("/documents", ragController.GetDocuments) // Endpoint to list indexed units
		apiV1.GET("/status", ragController.Status)          // Endpoint for index/backend status
	}

	// Start the Server
	port := getEnv("PORT", "8080")
	log.Printf("Go Gin backend server starting on http://localhost:%s", port)
	log.Printf("Health check available at: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  POST http://localhost:%s/api/v1/query", port)
	log.Printf("  POST http://localhost:%s/api/v1/reload", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getOrCreateCollectionV2 implements collection management using v2 API
func getOrCreateCollectionV2(client chromago.Client, collectionName string) (chromago.Collection, error) {
	ctx := context.Background()

	log.Printf("Getting or creating collection '%s' using v2 API...", collectionName)

	// Use v2 API's GetOrCreateCollection method
	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "Omani legal document collection"),
				chromago.NewStringAttribute("created_by", "rag_service"),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("Successfully got/created collection '%s'", collectionName)
	return collection, nil
}
