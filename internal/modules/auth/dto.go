package auth

import "propertydesk/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserPublic struct {
	ID    int64           `json:"id"`
	Email string          `json:"email"`
	Name  string          `json:"name"`
	Role  domain.UserRole `json:"role"`
}

type LoginResponse struct {
	User      UserPublic `json:"user"`
	Token     string     `json:"token"`
	ExpiresIn int64      `json:"expires_in"`
}

func toPublic(u *domain.User) UserPublic {
	return UserPublic{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
