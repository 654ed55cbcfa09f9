package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB *gorm.DB
}

type gormRepository struct {
	db *gorm.DB
}

func New(p Params) domain.Repository {
	return &gormRepository{db: p.DB}
}

func (r *gormRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.ProcessorConfig, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrConfigNotFound
	}

	var record domain.ProcessorConfig
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND is_active = ?", identifier, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormRepository) FindByWebhookKey(ctx context.Context, key string) (*domain.ProcessorConfig, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrConfigNotFound
	}

	var record domain.ProcessorConfig
	err := r.db.WithContext(ctx).
		Where("webhook_key = ? AND is_active = ?", key, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return &record, nil
}
