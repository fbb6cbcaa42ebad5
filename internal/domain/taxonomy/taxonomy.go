package taxonomy

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("term not found")
	ErrSlugTaken = errors.New("slug already exists")
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Slug        string `json:"slug" binding:"required,min=1,max=255"`
	Description string `json:"description"`
}

type CreateTagRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
	Slug string `json:"slug" binding:"required,min=1,max=255"`
}
