package client

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("client not found")
	ErrEmailTaken = errors.New("email already exists")
)

type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Address   *string   `json:"address"`
	Notes     *string   `json:"notes"`
	CreatedBy *int64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=255"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Company *string `json:"company" binding:"omitempty,max=255"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type Patch struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Company *string `json:"company" binding:"omitempty,max=255"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}
