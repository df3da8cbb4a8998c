package exchange

import (
	"context"
	"errors"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/pkg/events"
	"propertydesk/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service owns the CDF/USD rate. Other services call Current once per request
// and pass the value down explicitly.
type Service struct {
	rates    RateRepository
	fallback float64
	events   events.Publisher
	log      logrus.FieldLogger
}

func NewService(rates RateRepository, fallback float64, publisher events.Publisher, log logrus.FieldLogger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{rates: rates, fallback: fallback, events: publisher, log: logger.OrDiscard(log)}
}

// Current returns the latest recorded rate, or the configured default when
// no rate was ever recorded.
func (s *Service) Current(ctx context.Context) (float64, error) {
	r, err := s.Rate(ctx)
	if err != nil {
		return 0, err
	}
	return r.CdfPerUsd, nil
}

func (s *Service) Rate(ctx context.Context) (*RateResponse, error) {
	latest, err := s.rates.Latest(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &RateResponse{CdfPerUsd: s.fallback, IsDefault: true}, nil
	}
	if err != nil {
		return nil, err
	}
	at := latest.CreatedAt
	return &RateResponse{CdfPerUsd: latest.CdfPerUsd, SetAt: &at, SetBy: latest.SetBy}, nil
}

// Set appends a new rate to the history; it becomes current immediately.
func (s *Service) Set(ctx context.Context, cdfPerUsd float64, userID int64) (*domain.ExchangeRate, error) {
	if cdfPerUsd <= 0 {
		return nil, ErrInvalidRate
	}
	rate := &domain.ExchangeRate{CdfPerUsd: cdfPerUsd, SetBy: userID, CreatedAt: time.Now()}
	if err := s.rates.Create(ctx, rate); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"cdf_per_usd": cdfPerUsd, "user_id": userID}).Info("exchange rate updated")
	if err := s.events.Publish(ctx, events.ExchangeRateUpdated, rate); err != nil {
		s.log.WithError(err).Warn("publish exchange rate event")
	}
	return rate, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]domain.ExchangeRate, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.rates.History(ctx, limit)
}
