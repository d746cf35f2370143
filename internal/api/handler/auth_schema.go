package handler

import (
	"time"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// --- Request types ---

type registerRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	University string `json:"university" validate:"required,min=2,max=100"`
	Course     string `json:"course" validate:"required,min=2,max=100"`
	Semester   int    `json:"semester" validate:"required,min=1,max=12"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type updateProfileRequest struct {
	Name       string `json:"name" validate:"omitempty,min=2,max=100"`
	University string `json:"university" validate:"omitempty,min=2,max=100"`
	Course     string `json:"course" validate:"omitempty,min=2,max=100"`
	Semester   int    `json:"semester" validate:"omitempty,min=1,max=12"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

// --- Response types ---

type userResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	University string     `json:"university"`
	Course     string     `json:"course"`
	Semester   int        `json:"semester"`
	Verified   bool       `json:"is_verified"`
	Status     string     `json:"account_status"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type accountStatusResponse struct {
	IsVerified    bool   `json:"is_verified"`
	AccountStatus string `json:"account_status"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		University: u.University,
		Course:     u.Course,
		Semester:   u.Semester,
		Verified:   u.Verified,
		Status:     string(u.Status),
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
}
