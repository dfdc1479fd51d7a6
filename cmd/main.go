package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chat-studio-backend/internal/api"
	"chat-studio-backend/internal/api/routes"
	v1 "chat-studio-backend/internal/api/routes/v1"
	"chat-studio-backend/internal/config"
	"chat-studio-backend/internal/libraries"
	llmHandlers "chat-studio-backend/internal/llm_handlers"
	"chat-studio-backend/internal/repo"
	"chat-studio-backend/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chatRepo, closeStore := openStore(cfg)
	defer closeStore()

	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client (%s): %v", cfg.LLMProvider, err)
	}
	defer func() {
		if err := llmClient.Close(); err != nil {
			log.Println("Failed to close LLM client:", err)
		}
	}()

	hub := libraries.NewHub()
	go hub.Run(ctx)

	var events libraries.EventBus = libraries.NewLocalBus(hub)
	if cfg.RedisURL != "" {
		redisClient, err := libraries.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis: ", err)
		}
		defer redisClient.Close()

		redisBus := libraries.NewRedisBus(redisClient, libraries.DefaultEventChannel, hub)
		if err := redisBus.Start(ctx); err != nil {
			log.Fatal("Failed to subscribe to chat events: ", err)
		}
		events = redisBus
		log.Println("✅ Chat events fan out through Redis")
	}

	chatWorkflow := workflow.NewWorkflow(chatRepo, llmClient, workflow.Options{
		SystemPrompt:  cfg.SystemPrompt,
		ContextWindow: cfg.ContextWindow,
		ModelTimeout:  cfg.ModelTimeout,
		Events:        events,
	})

	app := api.NewServer(api.ServerConfig{CORSOrigins: cfg.CORSOrigins})
	routes.Register(app, v1.Dependencies{
		ChatRepo: chatRepo,
		Workflow: chatWorkflow,
		Hub:      hub,
		Events:   events,
	})

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Println("Server shutdown error:", err)
		}
	}()

	if err := api.StartServer(app, cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// openStore builds the message store. A database that cannot be reached
// stops startup unless STORE_FALLBACK=memory asks for a volatile store.
func openStore(cfg *config.Config) (repo.MessageRepoInterface, func()) {
	if cfg.Store == config.StoreMemory {
		log.Println("Using in-memory message store; history is lost on restart")
		return repo.NewMemoryMessageRepository(), func() {}
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		if cfg.StoreFallback == config.StoreMemory {
			log.Printf("⚠️  Database unavailable (%v); falling back to in-memory message store", err)
			return repo.NewMemoryMessageRepository(), func() {}
		}
		log.Fatal("Failed to connect to database: ", err)
	}

	if cfg.Migrate {
		if err := config.MigrateAllModels(db); err != nil {
			log.Fatal("Failed to migrate database: ", err)
		}
	} else {
		log.Println("skipping migration")
	}

	return repo.NewMessageRepository(db), func() {
		if err := config.CloseDB(db); err != nil {
			log.Println("Failed to close database:", err)
		}
	}
}

func newLLMClient(ctx context.Context, cfg *config.Config) (*llmHandlers.BoundedClient, error) {
	llmCfg := llmHandlers.Config{Provider: llmHandlers.Provider(cfg.LLMProvider)}

	switch llmCfg.Provider {
	case llmHandlers.ProviderGemini:
		llmCfg.APIKey = cfg.GeminiAPIKey
		llmCfg.Model = cfg.GeminiModelID
	case llmHandlers.ProviderOpenAI:
		llmCfg.APIKey = cfg.OpenAIAPIKey
		llmCfg.Model = cfg.OpenAIModel
	case llmHandlers.ProviderGroq:
		llmCfg.APIKey = cfg.GroqAPIKey
		llmCfg.Model = cfg.GroqModel
		llmCfg.BaseURL = cfg.GroqBaseURL
	case llmHandlers.ProviderVertexAnthropic:
		llmCfg.Vertex = llmHandlers.VertexConfig{
			Credentials: cfg.GCPCredentials,
			ProjectID:   cfg.GCPProjectID,
			Location:    cfg.VertexLocation,
			Model:       cfg.ClaudeModel,
		}
	}

	client, err := llmHandlers.New(ctx, llmCfg)
	if err != nil {
		return nil, err
	}
	return llmHandlers.NewBoundedClient(client, cfg.ModelConcurrency), nil
}
