package repository

import (
	"context"

	"propertydesk/internal/domain"

	"gorm.io/gorm"
)

type ExchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// Latest returns the most recent rate, or gorm.ErrRecordNotFound when none
// was ever recorded.
func (r *ExchangeRateRepository) Latest(ctx context.Context) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *ExchangeRateRepository) Create(ctx context.Context, rate *domain.ExchangeRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *ExchangeRateRepository) History(ctx context.Context, limit int) ([]domain.ExchangeRate, error) {
	var out []domain.ExchangeRate
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
