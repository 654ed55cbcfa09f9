package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProcessorConfig maps an identifier to a processor kind and its
// (encrypted) credential blob. WebhookKey is the static signature header
// value that identifies this configuration on inbound webhooks, for
// processors that send one.
type ProcessorConfig struct {
	ID         snowflake.ID   `json:"id" gorm:"primaryKey"`
	Identifier string         `json:"identifier" gorm:"type:text;not null;uniqueIndex"`
	Kind       string         `json:"kind" gorm:"type:text;not null"`
	Config     datatypes.JSON `json:"config" gorm:"type:jsonb;not null"`
	WebhookKey string         `json:"webhook_key" gorm:"type:text;index"`
	IsActive   bool           `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"not null"`
}

func (ProcessorConfig) TableName() string { return "processor_configs" }

type Repository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*ProcessorConfig, error)
	FindByWebhookKey(ctx context.Context, key string) (*ProcessorConfig, error)
}
