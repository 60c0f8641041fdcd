package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/temirbekuulu/deckgen/internal/models"
)

const (
	// Cache key prefixes
	KeyPrefixGeneration      = "generation:"
	KeyPrefixDocument        = "document:"
	KeyPrefixUserGenerations = "user_generations:"

	// Default TTL for cached items
	DefaultTTL = 1 * time.Hour
)

// Repository represents a Redis cache repository
type Repository struct {
	client *redis.Client
	ctx    context.Context
}

// NewRepository creates a new Redis cache repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{
		client: client,
		ctx:    context.Background(),
	}
}

// CacheGeneration stores a generation run in the cache
func (r *Repository) CacheGeneration(generation *models.Generation) error {
	if r.client == nil {
		return nil // Skip if Redis is not available
	}

	data, err := json.Marshal(generation)
	if err != nil {
		return fmt.Errorf("failed to marshal generation: %w", err)
	}

	key := KeyPrefixGeneration + generation.ID.String()
	return r.client.Set(r.ctx, key, data, DefaultTTL).Err()
}

// GetGeneration retrieves a generation run from the cache
func (r *Repository) GetGeneration(id uuid.UUID) (*models.Generation, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	key := KeyPrefixGeneration + id.String()
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss, not an error
		}
		return nil, err
	}

	var generation models.Generation
	if err := json.Unmarshal(data, &generation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generation: %w", err)
	}

	return &generation, nil
}

// InvalidateGeneration removes a generation from the cache
func (r *Repository) InvalidateGeneration(id uuid.UUID) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(r.ctx, KeyPrefixGeneration+id.String()).Err()
}

// CacheDocument stores a document in the cache
func (r *Repository) CacheDocument(document *models.Document) error {
	if r.client == nil {
		return nil
	}

	data, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	key := KeyPrefixDocument + document.ID.String()
	return r.client.Set(r.ctx, key, data, DefaultTTL).Err()
}

// GetDocument retrieves a document from the cache
func (r *Repository) GetDocument(id uuid.UUID) (*models.Document, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	data, err := r.client.Get(r.ctx, KeyPrefixDocument+id.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var document models.Document
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return &document, nil
}

// CacheUserGenerations stores a user's latest generation runs in the cache
func (r *Repository) CacheUserGenerations(userID uuid.UUID, generations []*models.Generation) error {
	if r.client == nil {
		return nil
	}

	data, err := json.Marshal(generations)
	if err != nil {
		return fmt.Errorf("failed to marshal user generations: %w", err)
	}

	key := KeyPrefixUserGenerations + userID.String()
	return r.client.Set(r.ctx, key, data, DefaultTTL).Err()
}

// GetUserGenerations retrieves a user's latest generation runs from the cache
func (r *Repository) GetUserGenerations(userID uuid.UUID) ([]*models.Generation, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	data, err := r.client.Get(r.ctx, KeyPrefixUserGenerations+userID.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var generations []*models.Generation
	if err := json.Unmarshal(data, &generations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user generations: %w", err)
	}

	return generations, nil
}

// InvalidateUserGenerations removes a user's cached generation list
func (r *Repository) InvalidateUserGenerations(userID uuid.UUID) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(r.ctx, KeyPrefixUserGenerations+userID.String()).Err()
}
