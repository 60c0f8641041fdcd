package repository

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Factory manages all repositories
type Factory struct {
	UserRepository       UserRepository
	DocumentRepository   DocumentRepository
	GenerationRepository GenerationRepository
}

// NewRepositoryFactory creates a repository factory with all repositories
func NewRepositoryFactory(db *gorm.DB, redisClient *redis.Client) *Factory {
	return &Factory{
		UserRepository:       NewUserRepository(db, redisClient),
		DocumentRepository:   NewDocumentRepository(db, redisClient),
		GenerationRepository: NewGenerationRepository(db, redisClient),
	}
}
