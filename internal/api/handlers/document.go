package handlers

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/temirbekuulu/deckgen/internal/config"
	"github.com/temirbekuulu/deckgen/internal/models"
	"github.com/temirbekuulu/deckgen/internal/repository"
	"github.com/temirbekuulu/deckgen/internal/service/document"
)

// DocumentHandler handles document ingestion and retrieval
type DocumentHandler struct {
	DocumentRepo repository.DocumentRepository
	UserRepo     repository.UserRepository
	Config       *config.Config
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docRepo repository.DocumentRepository, userRepo repository.UserRepository, cfg *config.Config) *DocumentHandler {
	return &DocumentHandler{
		DocumentRepo: docRepo,
		UserRepo:     userRepo,
		Config:       cfg,
	}
}

// CreateDocumentRequest represents a request to create a document from raw text
type CreateDocumentRequest struct {
	Title string `json:"title"`
	Text  string `json:"text" validate:"required"`
}

// IngestURLRequest represents a request to ingest a document from a URL
type IngestURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func documentPayload(doc *models.Document) fiber.Map {
	payload := fiber.Map{
		"id":          doc.ID,
		"title":       doc.Title,
		"source_type": doc.SourceType,
		"created_at":  doc.CreatedAt,
	}
	if doc.SourceURL != "" {
		payload["source_url"] = doc.SourceURL
	}
	if len(doc.Metadata) > 0 {
		payload["metadata"] = json.RawMessage(doc.Metadata)
	}
	return payload
}

// persist stores normalized content as a document row and logs the upload
func (h *DocumentHandler) persist(c *fiber.Ctx, content *document.Content, sourceURL string) error {
	userID := c.Locals("userID").(uuid.UUID)

	metadata, err := json.Marshal(fiber.Map{
		"stats":    content.Meta,
		"sections": content.Sections,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to encode document metadata",
		})
	}

	doc := models.Document{
		UserID:     userID,
		Title:      content.Title,
		SourceType: string(content.Source),
		SourceURL:  sourceURL,
		Content:    content.Text,
		Metadata:   datatypes.JSON(metadata),
	}

	if err := h.DocumentRepo.Create(&doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save document",
		})
	}

	go h.UserRepo.LogActivity(&models.UserActivity{
		UserID:     userID,
		ActionType: "upload",
		EntityType: "document",
		EntityID:   doc.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    documentPayload(&doc),
	})
}

// CreateFromText creates a document from raw text in the request body
func (h *DocumentHandler) CreateFromText(c *fiber.Ctx) error {
	req := new(CreateDocumentRequest)
	if err := c.BodyParser(req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Text is required",
		})
	}

	if int64(len(req.Text)) > h.Config.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"error":   "Document is too large",
		})
	}

	content, err := document.FromText(req.Title, req.Text, document.SourceText)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return h.persist(c, content, "")
}

// Upload ingests an uploaded PDF or text file
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "A file upload is required",
		})
	}

	if fileHeader.Size > h.Config.MaxUploadBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"error":   "File is too large",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to read uploaded file",
		})
	}
	defer file.Close()

	title := c.FormValue("title")
	var content *document.Content

	switch c.FormValue("type", "pdf") {
	case "pdf":
		content, err = document.FromPDF(title, file, fileHeader.Size)
	case "text":
		raw, readErr := io.ReadAll(file)
		if readErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to read uploaded file",
			})
		}
		content, err = document.FromText(title, string(raw), document.SourceText)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Unsupported file type",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return h.persist(c, content, "")
}

// IngestURL fetches a remote page and ingests its readable text
func (h *DocumentHandler) IngestURL(c *fiber.Ctx) error {
	req := new(IngestURLRequest)
	if err := c.BodyParser(req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "URL is required",
		})
	}

	opts := document.DefaultFetchOptions()
	opts.MaxBytes = h.Config.MaxUploadBytes

	content, err := document.FromURL(req.URL, opts)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to ingest URL: " + err.Error(),
		})
	}

	return h.persist(c, content, req.URL)
}

// ListDocuments returns the current user's documents with pagination
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uuid.UUID)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	documents, total, err := h.DocumentRepo.FindByUser(userID, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch documents",
		})
	}

	items := make([]fiber.Map, 0, len(documents))
	for _, doc := range documents {
		items = append(items, documentPayload(doc))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"documents": items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// GetDocument returns one document with its generation runs
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid document ID",
		})
	}

	doc, err := h.DocumentRepo.FindWithGenerations(docID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Document not found",
		})
	}

	if !h.canAccess(c, doc.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Access denied",
		})
	}

	generations := make([]fiber.Map, 0, len(doc.Generations))
	for _, gen := range doc.Generations {
		generations = append(generations, fiber.Map{
			"id":         gen.ID,
			"status":     gen.Status,
			"provider":   gen.Provider,
			"created_at": gen.CreatedAt,
		})
	}

	payload := documentPayload(doc)
	payload["content"] = doc.Content
	payload["generations"] = generations

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payload,
	})
}

// DeleteDocument removes a document
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
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

	if !h.canAccess(c, doc.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Access denied",
		})
	}

	if err := h.DocumentRepo.Delete(&doc); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to delete document",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Document deleted successfully",
	})
}

// canAccess reports whether the requester owns the resource or is an admin
func (h *DocumentHandler) canAccess(c *fiber.Ctx, ownerID uuid.UUID) bool {
	userID, ok := c.Locals("userID").(uuid.UUID)
	if !ok {
		return false
	}
	if userID == ownerID {
		return true
	}
	role, _ := c.Locals("role").(string)
	return role == "admin"
}
