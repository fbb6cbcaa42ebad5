package media

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("media not found")

type Media struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	OriginalName   string    `json:"original_name"`
	MimeType       string    `json:"mime_type"`
	Size           int64     `json:"size"`
	Path           string    `json:"path"`
	UploadedBy     *int64    `json:"uploaded_by"`
	UploadedByName *string   `json:"uploaded_by_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
