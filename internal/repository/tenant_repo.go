package repository

import (
	"context"
	"strings"

	"propertydesk/internal/domain"

	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	return translateError(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TenantRepository) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Search lists tenants whose name, phone or email contains q (case
// insensitive). An empty q lists everyone.
func (r *TenantRepository) Search(ctx context.Context, q string, limit, offset int) ([]domain.Tenant, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Tenant{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Tenant
	if err := query.Order("full_name").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
