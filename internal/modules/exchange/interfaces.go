package exchange

import (
	"context"

	"propertydesk/internal/domain"
)

type RateRepository interface {
	Latest(ctx context.Context) (*domain.ExchangeRate, error)
	Create(ctx context.Context, rate *domain.ExchangeRate) error
	History(ctx context.Context, limit int) ([]domain.ExchangeRate, error)
}
