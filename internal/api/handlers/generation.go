package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/temirbekuulu/deckgen/internal/api/websocket"
	"github.com/temirbekuulu/deckgen/internal/config"
	"github.com/temirbekuulu/deckgen/internal/models"
	"github.com/temirbekuulu/deckgen/internal/repository"
	"github.com/temirbekuulu/deckgen/internal/service/document"
	"github.com/temirbekuulu/deckgen/internal/service/exporter"
	"github.com/temirbekuulu/deckgen/internal/service/llm"
	"github.com/temirbekuulu/deckgen/internal/service/workflow"
)

// GenerationHandler handles presentation generation requests
type GenerationHandler struct {
	GenerationRepo repository.GenerationRepository
	DocumentRepo   repository.DocumentRepository
	UserRepo       repository.UserRepository
	LLMService     *llm.Service
	Hub            *websocket.Hub
	Config         *config.Config
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(
	genRepo repository.GenerationRepository,
	docRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	llmService *llm.Service,
	hub *websocket.Hub,
	cfg *config.Config,
) *GenerationHandler {
	return &GenerationHandler{
		GenerationRepo: genRepo,
		DocumentRepo:   docRepo,
		UserRepo:       userRepo,
		LLMService:     llmService,
		Hub:            hub,
		Config:         cfg,
	}
}

// CreateGenerationRequest represents a request to start a generation run
type CreateGenerationRequest struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
	Provider   string `json:"provider"`
}

// CreateGeneration starts a generation run for a document. The pipeline
// executes in the background; progress is streamed over the websocket.
func (h *GenerationHandler) CreateGeneration(c *fiber.Ctx) error {
	req := new(CreateGenerationRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid document ID",
		})
	}

	var doc models.Document
	if err := h.DocumentRepo.FindByID(docID, &doc); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Document not found",
		})
	}

	userID := c.Locals("userID").(uuid.UUID)
	if doc.UserID != userID {
		role, _ := c.Locals("role").(string)
		if role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Access denied",
			})
		}
	}

	provider := req.Provider
	if provider == "" {
		provider = h.Config.DefaultProvider
	}
	if _, err := h.LLMService.GetProvider(provider); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Provider %q is not configured", provider),
		})
	}

	generation := models.Generation{
		DocumentID: docID,
		UserID:     userID,
		Status:     string(workflow.StatusPending),
		Provider:   provider,
	}
	if err := h.GenerationRepo.Create(&generation); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create generation",
		})
	}

	go h.UserRepo.LogActivity(&models.UserActivity{
		UserID:     userID,
		ActionType: "generate",
		EntityType: "generation",
		EntityID:   generation.ID,
	})

	go h.runGeneration(generation.ID, &doc, provider)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          generation.ID,
			"document_id": docID,
			"status":      generation.Status,
			"provider":    provider,
		},
	})
}

// runGeneration executes the pipeline in the background, persisting each
// step and broadcasting progress to websocket subscribers
func (h *GenerationHandler) runGeneration(generationID uuid.UUID, doc *models.Document, provider string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.Config.GenerationTimeout)
	defer cancel()

	if err := h.GenerationRepo.UpdateStatus(generationID, workflow.StatusRunning, ""); err != nil {
		h.LLMService.Logger().Error("Failed to mark generation running", "id", generationID, "error", err)
	}

	content, err := document.FromText(doc.Title, doc.Content, document.SourceType(doc.SourceType))
	if err != nil {
		h.failGeneration(generationID, fmt.Sprintf("document is not usable: %v", err))
		return
	}

	coordinator := workflow.NewCoordinator(workflow.CoordinatorOptions{
		Generator: &workflow.ServiceGenerator{
			Service:  h.LLMService,
			Provider: provider,
		},
		MaxContentSlides: h.Config.MaxContentSlides,
		Logger:           h.LLMService.Logger(),
		Progress: func(result workflow.StepResult) {
			if err := h.GenerationRepo.SaveStepResult(generationID, result); err != nil {
				h.LLMService.Logger().Error("Failed to save step result", "id", generationID, "error", err)
			}
			h.Hub.BroadcastStep(generationID, result)
		},
	})

	outcome, err := coordinator.Run(ctx, content)
	if err != nil {
		h.failGeneration(generationID, outcome.ErrorMessage)
		return
	}

	if err := h.GenerationRepo.SaveDeck(generationID, outcome.Deck); err != nil {
		h.failGeneration(generationID, fmt.Sprintf("failed to save deck: %v", err))
		return
	}

	if err := h.GenerationRepo.UpdateStatus(generationID, workflow.StatusCompleted, ""); err != nil {
		h.LLMService.Logger().Error("Failed to mark generation completed", "id", generationID, "error", err)
	}

	h.Hub.BroadcastCompleted(generationID, outcome.Deck)
}

func (h *GenerationHandler) failGeneration(generationID uuid.UUID, message string) {
	if err := h.GenerationRepo.UpdateStatus(generationID, workflow.StatusFailed, message); err != nil {
		h.LLMService.Logger().Error("Failed to mark generation failed", "id", generationID, "error", err)
	}
	h.Hub.BroadcastFailed(generationID, message)
}

// ListGenerations returns the current user's generation runs with pagination
func (h *GenerationHandler) ListGenerations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uuid.UUID)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	generations, total, err := h.GenerationRepo.FindByUser(userID, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch generations",
		})
	}

	items := make([]fiber.Map, 0, len(generations))
	for _, gen := range generations {
		items = append(items, fiber.Map{
			"id":             gen.ID,
			"document_id":    gen.DocumentID,
			"document_title": gen.Document.Title,
			"status":         gen.Status,
			"provider":       gen.Provider,
			"created_at":     gen.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"generations": items,
			"total":       total,
			"page":        page,
			"page_size":   pageSize,
		},
	})
}

// GetGeneration returns one generation run with its steps and slides
func (h *GenerationHandler) GetGeneration(c *fiber.Ctx) error {
	generation, ok := h.loadAccessible(c)
	if !ok {
		return nil
	}

	payload := fiber.Map{
		"id":          generation.ID,
		"document_id": generation.DocumentID,
		"status":      generation.Status,
		"provider":    generation.Provider,
		"created_at":  generation.CreatedAt,
	}
	if generation.Error != "" {
		payload["error"] = generation.Error
	}
	if len(generation.Deck) > 0 {
		payload["deck"] = json.RawMessage(generation.Deck)
	}

	steps := make([]fiber.Map, 0, len(generation.Steps))
	for _, step := range generation.Steps {
		steps = append(steps, fiber.Map{
			"step_number": step.StepNumber,
			"step_name":   step.StepName,
			"status":      step.Status,
			"duration_ms": step.DurationMs,
			"error":       step.Error,
		})
	}
	payload["steps"] = steps

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

// GetSteps returns the recorded pipeline steps of a generation run
func (h *GenerationHandler) GetSteps(c *fiber.Ctx) error {
	generation, ok := h.loadAccessible(c)
	if !ok {
		return nil
	}

	steps := make([]fiber.Map, 0, len(generation.Steps))
	for _, step := range generation.Steps {
		item := fiber.Map{
			"step_number": step.StepNumber,
			"step_name":   step.StepName,
			"status":      step.Status,
			"duration_ms": step.DurationMs,
			"created_at":  step.CreatedAt,
		}
		if step.Error != "" {
			item["error"] = step.Error
		}
		if len(step.Payload) > 0 {
			item["payload"] = json.RawMessage(step.Payload)
		}
		steps = append(steps, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    steps,
	})
}

// GetSlides returns the assembled slides of a generation run
func (h *GenerationHandler) GetSlides(c *fiber.Ctx) error {
	generation, ok := h.loadAccessible(c)
	if !ok {
		return nil
	}

	slides := make([]fiber.Map, 0, len(generation.Slides))
	for _, slide := range generation.Slides {
		item := fiber.Map{
			"number": slide.Number,
			"type":   slide.Type,
			"layout": slide.Layout,
			"title":  slide.Title,
		}
		if len(slide.Content) > 0 {
			item["content"] = json.RawMessage(slide.Content)
		}
		slides = append(slides, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    slides,
	})
}

// DeleteGeneration removes a generation run
func (h *GenerationHandler) DeleteGeneration(c *fiber.Ctx) error {
	generation, ok := h.loadAccessible(c)
	if !ok {
		return nil
	}

	if err := h.GenerationRepo.Delete(generation); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete generation",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Generation deleted successfully",
	})
}

// ExportJSON streams the assembled deck as a JSON download
func (h *GenerationHandler) ExportJSON(c *fiber.Ctx) error {
	deck, generation, ok := h.loadDeck(c)
	if !ok {
		return nil
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="deck-%s.json"`, generation.ID))

	return exporter.JSON(c.Response().BodyWriter(), deck)
}

// ExportPDF streams the assembled deck rendered as a PDF download
func (h *GenerationHandler) ExportPDF(c *fiber.Ctx) error {
	deck, generation, ok := h.loadDeck(c)
	if !ok {
		return nil
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="deck-%s.pdf"`, generation.ID))

	return exporter.PDF(c.Response().BodyWriter(), deck)
}

// HandleWebSocket subscribes a client to live progress for one generation.
// The generation ID is validated before the HTTP upgrade happens, so by the
// time this runs the param is trusted.
func (h *GenerationHandler) HandleWebSocket(conn *fiberws.Conn) {
	generationID, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		conn.Close()
		return
	}
	h.Hub.HandleConnection(conn, generationID)
}

// loadAccessible fetches the generation from the :id param and enforces
// ownership. On failure it writes the error response and returns ok=false.
func (h *GenerationHandler) loadAccessible(c *fiber.Ctx) (*models.Generation, bool) {
	generationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid generation ID",
		})
		return nil, false
	}

	generation, err := h.GenerationRepo.FindComplete(generationID)
	if err != nil {
		c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Generation not found",
		})
		return nil, false
	}

	userID, _ := c.Locals("userID").(uuid.UUID)
	role, _ := c.Locals("role").(string)
	if generation.UserID != userID && role != "admin" {
		c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Access denied",
		})
		return nil, false
	}

	return generation, true
}

// loadDeck loads an accessible generation and decodes its stored deck
func (h *GenerationHandler) loadDeck(c *fiber.Ctx) (*workflow.Deck, *models.Generation, bool) {
	generation, ok := h.loadAccessible(c)
	if !ok {
		return nil, nil, false
	}

	if generation.Status != string(workflow.StatusCompleted) || len(generation.Deck) == 0 {
		c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Generation has no assembled deck yet",
		})
		return nil, nil, false
	}

	var deck workflow.Deck
	if err := json.Unmarshal(generation.Deck, &deck); err != nil {
		c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Stored deck is corrupted",
		})
		return nil, nil, false
	}

	return &deck, generation, true
}
