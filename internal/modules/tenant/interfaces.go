package tenant

import (
	"context"

	"propertydesk/internal/domain"
)

type TenantRepository interface {
	Create(ctx context.Context, t *domain.Tenant) error
	GetByID(ctx context.Context, id int64) (*domain.Tenant, error)
	Search(ctx context.Context, q string, limit, offset int) ([]domain.Tenant, int64, error)
}
