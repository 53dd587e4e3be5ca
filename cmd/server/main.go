package main

import (
	"context"
	"log"
	"path/filepath"

	"lawgpt-backend/config"
	"lawgpt-backend/embedding"
	"lawgpt-backend/handlers"
	"lawgpt-backend/llm"
	"lawgpt-backend/pipeline"
	"lawgpt-backend/service"
	"lawgpt-backend/storage"
	"lawgpt-backend/vectorstore"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Gemini client
	geminiClient, err := initGemini(cfg.GoogleAPIKey)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}

	// Initialize vector store
	store, err := vectorstore.NewStore(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey, cfg.QdrantUseTLS)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer store.Close()

	// Initialize batch-file storage
	source, err := storage.NewSourceFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Storage initialized")

	// Initialize pipelines
	embedder := embedding.NewGeminiEmbedder(geminiClient)
	casePipeline := pipeline.NewCasePipeline(embedder, store, source, cfg.CasesCollection)
	lawPipeline := pipeline.NewLawPipeline(embedder, store, source, cfg.LawsCollection)

	ctx := context.Background()
	if err := casePipeline.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure collection %s: %v", casePipeline.Collection(), err)
	}
	if err := lawPipeline.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure collection %s: %v", lawPipeline.Collection(), err)
	}

	// Load prompts
	chatSystemPrompt := service.ChatSystemPrompt(filepath.Join(cfg.PromptsPath, service.ChatPromptFile))
	summarizerSystem, summarizerUser := service.SummarizerPrompts(filepath.Join(cfg.PromptsPath, service.SummarizerPromptFile))

	// Initialize services
	chatOpts := []service.ChatServiceOption{
		service.ChatWithCaseSearcher(casePipeline),
		service.ChatWithLawSearcher(lawPipeline),
		service.ChatWithGenerator(service.ModelGemini, service.NewGeminiGenerator(geminiClient, chatSystemPrompt)),
	}
	if cfg.OpenAIAPIKey != "" {
		chatOpts = append(chatOpts, service.ChatWithGenerator(service.ModelOpenAI, service.NewOpenAIGenerator(cfg.OpenAIAPIKey, chatSystemPrompt)))
	}
	if cfg.CustomModelURL != "" {
		chatOpts = append(chatOpts, service.ChatWithGenerator(service.ModelCustom, llm.NewCustomClient(cfg.CustomModelURL, cfg.CustomModelAPIKey, chatSystemPrompt)))
	}
	chatService := service.NewChatService(chatOpts...)

	summarizerService := service.NewSummarizerService(
		service.SummarizerWithClient(geminiClient),
		service.SummarizerWithPrompts(summarizerSystem, summarizerUser),
	)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService)
	summarizeHandler := handlers.NewSummarizeHandler(summarizerService)

	// Setup Gin router
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(handlers.RequestID())

	r.GET("/", handlers.Root)
	r.GET("/health", handlers.Health)

	// API routes
	api := r.Group("/api/v1")
	{
		api.POST("/chat", chatHandler.Chat)
		api.POST("/summarize", summarizeHandler.Summarize)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initGemini(apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		log.Println("Warning: GOOGLE_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
