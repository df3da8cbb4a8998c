package tenant

import "propertydesk/internal/domain"

type CreateTenantRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	DocumentID  string `json:"document_id"`
	Nationality string `json:"nationality"`
	Notes       string `json:"notes"`
}

type ListResponse struct {
	Tenants []domain.Tenant `json:"tenants"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}
