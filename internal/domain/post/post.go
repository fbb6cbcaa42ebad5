package post

import (
	"errors"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrSlugTaken = errors.New("slug already exists")
)

type Post struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage *string    `json:"featured_image"`
	URL           *string    `json:"url"`
	AuthorID      *int64     `json:"author_id"`
	AuthorName    *string    `json:"author_name,omitempty"`
	AuthorAvatar  *string    `json:"author_avatar,omitempty"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Status   *string
	AuthorID *int64
	Limit    int
	Offset   int
}

type CreateRequest struct {
	Title         string  `json:"title" binding:"required,min=1,max=255"`
	Slug          string  `json:"slug" binding:"required,min=1,max=255"`
	Content       string  `json:"content"`
	Excerpt       string  `json:"excerpt"`
	FeaturedImage *string `json:"featured_image"`
	URL           *string `json:"url" binding:"omitempty,max=500"`
	Status        string  `json:"status" binding:"omitempty,oneof=draft published"`
	CategoryIDs   []int64 `json:"category_ids"`
	TagIDs        []int64 `json:"tag_ids"`
}

// Patch carries a partial update: absent body fields stay nil and the
// matching columns are left untouched.
type Patch struct {
	Title         *string `json:"title" binding:"omitempty,min=1,max=255"`
	Slug          *string `json:"slug" binding:"omitempty,min=1,max=255"`
	Content       *string `json:"content"`
	Excerpt       *string `json:"excerpt"`
	FeaturedImage *string `json:"featured_image"`
	URL           *string `json:"url" binding:"omitempty,max=500"`
	Status        *string `json:"status" binding:"omitempty,oneof=draft published"`
	CategoryIDs   []int64 `json:"category_ids"`
	TagIDs        []int64 `json:"tag_ids"`
}
