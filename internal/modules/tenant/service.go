package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"propertydesk/internal/domain"
	"propertydesk/internal/pkg/validator"

	"gorm.io/gorm"
)

type Service struct {
	tenants TenantRepository
}

func NewService(tenants TenantRepository) *Service {
	return &Service{tenants: tenants}
}

func (s *Service) Create(ctx context.Context, req CreateTenantRequest) (*domain.Tenant, map[string]string, error) {
	t := &domain.Tenant{
		FullName:    strings.TrimSpace(req.FullName),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(strings.ToLower(req.Email)),
		DocumentID:  strings.TrimSpace(req.DocumentID),
		Nationality: strings.TrimSpace(req.Nationality),
		Notes:       req.Notes,
	}
	if errs := validator.Validate(t); errs != nil {
		return nil, errs, ErrValidation
	}
	if err := s.tenants.Create(ctx, t); err != nil {
		return nil, nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Service) Search(ctx context.Context, q string, limit, offset int) (*ListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, total, err := s.tenants.Search(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Tenant{}
	}
	return &ListResponse{Tenants: list, Total: total, Limit: limit, Offset: offset}, nil
}

// DisplayName returns the tenant's name, or a placeholder when the tenant row
// is missing. Lookup failures never block a booking view.
func (s *Service) DisplayName(ctx context.Context, id int64) string {
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil || t == nil || t.FullName == "" {
		return domain.UnknownTenantName
	}
	return t.FullName
}
