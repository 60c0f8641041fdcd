// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role represents a user role in the system
type Role struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(50);unique;not null;index"`
	Description string `gorm:"type:text"`
	// Relationships
	Users []User `gorm:"foreignKey:RoleID"`
}

// User represents a system user
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string         `gorm:"type:varchar(100);unique;not null;index"`
	Email        string         `gorm:"type:varchar(255);unique;not null;index"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	RoleID       uint           `gorm:"not null;index"`
	Role         Role           `gorm:"foreignKey:RoleID"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
	// Relationships
	Documents      []Document     `gorm:"foreignKey:UserID"`
	Generations    []Generation   `gorm:"foreignKey:UserID"`
	UserActivities []UserActivity `gorm:"foreignKey:UserID"`
}

// Document represents an ingested source document
type Document struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	User       User           `gorm:"foreignKey:UserID"`
	Title      string         `gorm:"type:varchar(255);index"`
	SourceType string         `gorm:"type:varchar(20);not null;index"` // text, pdf, html, url
	SourceURL  string         `gorm:"type:varchar(2048)"`
	Content    string         `gorm:"type:text;not null"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
	// Relationships
	Generations []Generation `gorm:"foreignKey:DocumentID"`
}

// Generation represents one presentation generation run over a document
type Generation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Document    Document       `gorm:"foreignKey:DocumentID"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index"`
	User        User           `gorm:"foreignKey:UserID"`
	Status      string         `gorm:"type:varchar(50);not null;default:'pending';index"`
	Provider    string         `gorm:"type:varchar(50);index"`
	StartedAt   time.Time      `gorm:"default:null;index"`
	CompletedAt time.Time      `gorm:"default:null;index"`
	Error       string         `gorm:"type:text"`
	Deck        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	// Relationships
	Steps  []GenerationStep `gorm:"foreignKey:GenerationID"`
	Slides []Slide          `gorm:"foreignKey:GenerationID"`
}

// GenerationStep records one pipeline stage of a generation run
type GenerationStep struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenerationID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Generation   Generation     `gorm:"foreignKey:GenerationID"`
	StepNumber   int            `gorm:"not null;index"`
	StepName     string         `gorm:"type:varchar(100);not null"`
	Status       string         `gorm:"type:varchar(50);not null;index"`
	DurationMs   int64          `gorm:"not null;default:0"`
	Error        string         `gorm:"type:text"`
	Payload      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

// Slide represents one slide of an assembled presentation
type Slide struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenerationID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Generation   Generation     `gorm:"foreignKey:GenerationID"`
	Number       int            `gorm:"not null;index"`
	Type         string         `gorm:"type:varchar(50);not null;index"` // title, content, conclusion
	Layout       string         `gorm:"type:varchar(50)"`
	Title        string         `gorm:"type:text"`
	Content      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

// TokenUsage records LLM token consumption per request
type TokenUsage struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GenerationID     uuid.UUID `gorm:"type:uuid;index"`
	Model            string    `gorm:"type:varchar(100);not null;index"`
	Provider         string    `gorm:"type:varchar(50);not null;index"`
	PromptTokens     int       `gorm:"not null;default:0"`
	CompletionTokens int       `gorm:"not null;default:0"`
	TotalCost        float64   `gorm:"not null;default:0"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

// UserActivity logs user actions in the system
type UserActivity struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	User       User           `gorm:"foreignKey:UserID"`
	ActionType string         `gorm:"type:varchar(100);not null;index"` // login, upload, generate, etc.
	EntityType string         `gorm:"type:varchar(100);index"`          // document, generation, etc.
	EntityID   uuid.UUID      `gorm:"type:uuid;index"`
	Details    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}
