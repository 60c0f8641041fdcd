package repository

import (
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/temirbekuulu/deckgen/internal/models"
)

// DocumentRepository defines operations for Document model
type DocumentRepository interface {
	Repository
	FindByUser(userID uuid.UUID, page, pageSize int) ([]*models.Document, int64, error)
	FindWithGenerations(id uuid.UUID) (*models.Document, error)
	FindBySourceType(sourceType string, limit int) ([]*models.Document, error)
	CountByUser(userID uuid.UUID) (int64, error)
}

// documentRepository implements DocumentRepository
type documentRepository struct {
	*BaseRepository
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB, redisClient *redis.Client) DocumentRepository {
	return &documentRepository{
		BaseRepository: NewBaseRepository(db, redisClient),
	}
}

// FindByID finds a document by ID, preferring the cache
func (r *documentRepository) FindByID(id interface{}, entity interface{}) error {
	docID, isUUID := id.(uuid.UUID)
	doc, isDoc := entity.(*models.Document)

	if isUUID && isDoc && r.CacheRepo != nil {
		cached, err := r.CacheRepo.GetDocument(docID)
		if err == nil && cached != nil {
			*doc = *cached
			return nil
		}
	}

	if err := r.DB.First(entity, id).Error; err != nil {
		return err
	}

	if isDoc && r.CacheRepo != nil {
		go r.CacheRepo.CacheDocument(doc)
	}
	return nil
}

// FindByUser retrieves a user's documents with pagination, newest first
func (r *documentRepository) FindByUser(userID uuid.UUID, page, pageSize int) ([]*models.Document, int64, error) {
	var documents []*models.Document
	var count int64

	query := r.DB.Model(&models.Document{}).Where("user_id = ?", userID)
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&documents).Error
	if err != nil {
		return nil, 0, err
	}

	return documents, count, nil
}

// FindWithGenerations loads a document together with its generation runs
func (r *documentRepository) FindWithGenerations(id uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := r.DB.Preload("Generations", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&document, id).Error
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// FindBySourceType retrieves recent documents of one source type
func (r *documentRepository) FindBySourceType(sourceType string, limit int) ([]*models.Document, error) {
	var documents []*models.Document
	err := r.DB.Where("source_type = ?", sourceType).
		Order("created_at DESC").
		Limit(limit).
		Find(&documents).Error
	return documents, err
}

// CountByUser counts a user's documents
func (r *documentRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Document{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
