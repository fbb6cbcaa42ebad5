package page

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("page not found")
	ErrSlugTaken = errors.New("slug already exists")
)

type Page struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Template   string    `json:"template"`
	Status     string    `json:"status"`
	AuthorID   *int64    `json:"author_id"`
	AuthorName *string   `json:"author_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=255"`
	Slug     string `json:"slug" binding:"required,min=1,max=255"`
	Content  string `json:"content"`
	Template string `json:"template" binding:"omitempty,max=100"`
	Status   string `json:"status" binding:"omitempty,oneof=draft published"`
}

type Patch struct {
	Title    *string `json:"title" binding:"omitempty,min=1,max=255"`
	Slug     *string `json:"slug" binding:"omitempty,min=1,max=255"`
	Content  *string `json:"content"`
	Template *string `json:"template" binding:"omitempty,max=100"`
	Status   *string `json:"status" binding:"omitempty,oneof=draft published"`
}
