package repository

import (
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/temirbekuulu/deckgen/internal/models"
	"github.com/temirbekuulu/deckgen/internal/service/workflow"
)

// GenerationRepository defines operations for Generation model
type GenerationRepository interface {
	Repository
	FindByUser(userID uuid.UUID, page, pageSize int) ([]*models.Generation, int64, error)
	FindByDocument(documentID uuid.UUID) ([]*models.Generation, error)
	FindComplete(id uuid.UUID) (*models.Generation, error)
	UpdateStatus(id uuid.UUID, status workflow.Status, errorMessage string) error
	SaveStepResult(generationID uuid.UUID, result workflow.StepResult) error
	SaveDeck(id uuid.UUID, deck *workflow.Deck) error
	RecordTokenUsage(usage *models.TokenUsage) error
	CountByStatus(status workflow.Status) (int64, error)
}

// generationRepository implements GenerationRepository
type generationRepository struct {
	*BaseRepository
}

// NewGenerationRepository creates a new generation repository
func NewGenerationRepository(db *gorm.DB, redisClient *redis.Client) GenerationRepository {
	return &generationRepository{
		BaseRepository: NewBaseRepository(db, redisClient),
	}
}

// FindByUser retrieves a user's generation runs with pagination
func (r *generationRepository) FindByUser(userID uuid.UUID, page, pageSize int) ([]*models.Generation, int64, error) {
	var generations []*models.Generation
	var count int64

	if err := r.DB.Model(&models.Generation{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.DB.Where("user_id = ?", userID).
		Preload("Document").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&generations).Error
	if err != nil {
		return nil, 0, err
	}

	return generations, count, nil
}

// FindByDocument retrieves all generation runs for a document
func (r *generationRepository) FindByDocument(documentID uuid.UUID) ([]*models.Generation, error) {
	var generations []*models.Generation
	err := r.DB.Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&generations).Error
	return generations, err
}

// FindComplete loads a generation with its document, steps and slides
func (r *generationRepository) FindComplete(id uuid.UUID) (*models.Generation, error) {
	if r.CacheRepo != nil {
		cached, err := r.CacheRepo.GetGeneration(id)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	var generation models.Generation
	err := r.DB.Preload("Document").
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		Preload("Slides", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		First(&generation, id).Error
	if err != nil {
		return nil, err
	}

	// Only finished runs are worth caching; running ones change constantly
	if r.CacheRepo != nil && generation.Status == string(workflow.StatusCompleted) {
		go r.CacheRepo.CacheGeneration(&generation)
	}

	return &generation, nil
}

// UpdateStatus transitions a generation run, stamping start and end times
func (r *generationRepository) UpdateStatus(id uuid.UUID, status workflow.Status, errorMessage string) error {
	updates := map[string]interface{}{
		"status": string(status),
	}
	switch status {
	case workflow.StatusRunning:
		updates["started_at"] = time.Now()
	case workflow.StatusCompleted, workflow.StatusFailed:
		updates["completed_at"] = time.Now()
	}
	if errorMessage != "" {
		updates["error"] = errorMessage
	}

	if r.CacheRepo != nil {
		defer r.CacheRepo.InvalidateGeneration(id)
	}

	return r.DB.Model(&models.Generation{}).Where("id = ?", id).Updates(updates).Error
}

// SaveStepResult persists one pipeline step outcome
func (r *generationRepository) SaveStepResult(generationID uuid.UUID, result workflow.StepResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	step := models.GenerationStep{
		GenerationID: generationID,
		StepNumber:   result.StepNumber,
		StepName:     result.StepName,
		Status:       string(result.Status),
		DurationMs:   result.ProcessingTime.Milliseconds(),
		Error:        result.ErrorMessage,
		Payload:      datatypes.JSON(payload),
	}
	return r.DB.Create(&step).Error
}

// SaveDeck stores the assembled deck and its per-slide rows in one
// transaction
func (r *generationRepository) SaveDeck(id uuid.UUID, deck *workflow.Deck) error {
	deckJSON, err := json.Marshal(deck)
	if err != nil {
		return err
	}

	return r.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Generation{}).Where("id = ?", id).
			Update("deck", datatypes.JSON(deckJSON)).Error; err != nil {
			return err
		}

		for _, slide := range deck.Slides {
			content, err := json.Marshal(slide)
			if err != nil {
				return err
			}
			row := models.Slide{
				GenerationID: id,
				Number:       slide.Number,
				Type:         slide.Type,
				Layout:       slide.Layout,
				Title:        slide.Title,
				Content:      datatypes.JSON(content),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordTokenUsage persists one token usage row
func (r *generationRepository) RecordTokenUsage(usage *models.TokenUsage) error {
	return r.DB.Create(usage).Error
}

// CountByStatus counts generation runs in a given status
func (r *generationRepository) CountByStatus(status workflow.Status) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Generation{}).Where("status = ?", string(status)).Count(&count).Error
	return count, err
}
