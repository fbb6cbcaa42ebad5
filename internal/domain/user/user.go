package user

import (
	"errors"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Avatar       *string    `json:"avatar"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Patch carries a partial update: nil means "leave unchanged".
type Patch struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=255"`
	Role   *string `json:"role" binding:"omitempty,oneof=admin editor"`
	Avatar *string `json:"avatar"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Role == nil && p.Avatar == nil
}
