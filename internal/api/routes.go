// Package api wires HTTP routes to their handlers.
package api

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"

	"github.com/temirbekuulu/deckgen/internal/api/handlers"
	"github.com/temirbekuulu/deckgen/internal/api/middleware"
	"github.com/temirbekuulu/deckgen/internal/api/websocket"
	"github.com/temirbekuulu/deckgen/internal/config"
	"github.com/temirbekuulu/deckgen/internal/database"
	"github.com/temirbekuulu/deckgen/internal/repository"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	app *fiber.App,
	cfg *config.Config,
	redisClient *database.RedisClient,
	repos *repository.Factory,
	llmService *llm.Service,
	hub *websocket.Hub,
) {
	authHandler := handlers.NewAuthHandler(repos.UserRepository, redisClient, cfg)
	userHandler := handlers.NewUserHandler(repos.UserRepository)
	documentHandler := handlers.NewDocumentHandler(repos.DocumentRepository, repos.UserRepository, cfg)
	generationHandler := handlers.NewGenerationHandler(
		repos.GenerationRepository,
		repos.DocumentRepository,
		repos.UserRepository,
		llmService,
		hub,
		cfg,
	)

	jwtAuth := middleware.JWTMiddleware(cfg)
	rateLimit := middleware.RateLimiter(cfg)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"providers": llmService.Providers(),
		})
	})

	// Authentication
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", jwtAuth, authHandler.RefreshToken)
	auth.Post("/logout", jwtAuth, authHandler.Logout)
	auth.Get("/me", jwtAuth, authHandler.GetMe)

	// User management
	users := api.Group("/users", jwtAuth)
	users.Get("/", middleware.AdminOnly(), userHandler.ListUsers)
	users.Get("/:id", middleware.Self("id"), userHandler.GetUser)
	users.Put("/:id", middleware.Self("id"), userHandler.UpdateUser)
	users.Put("/:id/role", middleware.AdminOnly(), userHandler.UpdateRole)
	users.Delete("/:id", middleware.AdminOnly(), userHandler.DeleteUser)

	// Documents
	documents := api.Group("/documents", jwtAuth, middleware.CreatorOrAdmin())
	documents.Post("/", rateLimit, documentHandler.CreateFromText)
	documents.Post("/upload", rateLimit, documentHandler.Upload)
	documents.Post("/url", rateLimit, documentHandler.IngestURL)
	documents.Get("/", documentHandler.ListDocuments)
	documents.Get("/:id", documentHandler.GetDocument)
	documents.Delete("/:id", documentHandler.DeleteDocument)

	// Generations
	generations := api.Group("/generations", jwtAuth, middleware.CreatorOrAdmin())
	generations.Post("/", rateLimit, generationHandler.CreateGeneration)
	generations.Get("/", generationHandler.ListGenerations)
	generations.Get("/:id", generationHandler.GetGeneration)
	generations.Get("/:id/steps", generationHandler.GetSteps)
	generations.Get("/:id/slides", generationHandler.GetSlides)
	generations.Get("/:id/export/json", generationHandler.ExportJSON)
	generations.Get("/:id/export/pdf", generationHandler.ExportPDF)
	generations.Delete("/:id", generationHandler.DeleteGeneration)

	// WebSocket for live generation progress
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/generations/:id", fiberws.New(generationHandler.HandleWebSocket))
}
