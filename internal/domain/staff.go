package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleAgent
}

type StaffUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *StaffLoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *StaffLoginRequest) Validate() error {
	if r.Email == "" || !emailPattern.MatchString(r.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email format"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Reason: "password is required"}
	}
	return nil
}

type StaffLoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Staff       struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"staff"`
}
