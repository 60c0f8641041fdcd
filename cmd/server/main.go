package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/temirbekuulu/deckgen/internal/api"
	"github.com/temirbekuulu/deckgen/internal/api/websocket"
	"github.com/temirbekuulu/deckgen/internal/config"
	"github.com/temirbekuulu/deckgen/internal/database"
	"github.com/temirbekuulu/deckgen/internal/repository"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
	"github.com/temirbekuulu/deckgen/internal/service/llm/providers"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize configuration
	cfg := config.NewConfig()

	// Connect to PostgreSQL
	db, err := database.InitPostgreSQL(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := database.InitRedis(cfg.RedisURI)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize the LLM service
	llmService := llm.NewService(llm.ServiceOptions{
		DefaultProvider:   cfg.DefaultProvider,
		RedisClient:       redisClient.Client,
		RequestsPerMinute: cfg.LLMRequestsPerMinute,
		DailyBudgetUSD:    cfg.DailyBudgetUSD,
		CacheTTL:          cfg.CacheTTL,
		MaxRetries:        cfg.LLMMaxRetries,
		RetryDelay:        cfg.LLMRetryDelay,
	})
	defer llmService.Close()

	registerProviders(llmService, cfg)
	if len(llmService.Providers()) == 0 {
		log.Println("Warning: no LLM providers configured, generations will use heuristic fallbacks")
	}

	// Repositories
	repos := repository.NewRepositoryFactory(db.DB, redisClient.Client)

	// WebSocket hub for live generation progress
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    int(cfg.MaxUploadBytes),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH",
	}))

	// Setup routes
	api.SetupRoutes(app, cfg, redisClient, repos, llmService, hub)

	// Start server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}

// registerProviders wires up every LLM provider that has credentials
func registerProviders(svc *llm.Service, cfg *config.Config) {
	if cfg.GeminiAPIKey != "" {
		provider, err := providers.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, svc.Logger())
		if err != nil {
			log.Printf("Warning: Gemini provider unavailable: %v", err)
		} else {
			svc.RegisterProvider(provider)
		}
	}

	if cfg.OpenAIAPIKey != "" {
		provider, err := providers.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, svc.Logger())
		if err != nil {
			log.Printf("Warning: OpenAI provider unavailable: %v", err)
		} else {
			svc.RegisterProvider(provider)
		}
	}

	if cfg.AzureOpenAIKey != "" && cfg.AzureOpenAIEndpoint != "" {
		provider, err := providers.NewAzureOpenAIProvider(cfg.AzureOpenAIKey, providers.AzureConfig{
			Endpoint:   cfg.AzureOpenAIEndpoint,
			Deployment: cfg.AzureDeployment,
			APIVersion: cfg.AzureAPIVersion,
		}, svc.Logger())
		if err != nil {
			log.Printf("Warning: Azure OpenAI provider unavailable: %v", err)
		} else {
			svc.RegisterProvider(provider)
		}
	}
}
