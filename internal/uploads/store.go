package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Extensions the media library accepts: images, documents, video and
// audio.
var allowedExtensions = map[string]struct{}{
	".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".pdf": {}, ".doc": {}, ".docx": {},
	".mp4": {}, ".mov": {}, ".avi": {}, ".webm": {}, ".mkv": {},
	".mp3": {}, ".wav": {}, ".ogg": {}, ".m4a": {}, ".aac": {}, ".flac": {},
}

func AllowedType(originalName, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(originalName))

	if _, ok := allowedExtensions[ext]; !ok {
		return false
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"),
		strings.HasPrefix(mimeType, "video/"),
		strings.HasPrefix(mimeType, "audio/"),
		mimeType == "application/pdf",
		strings.HasPrefix(mimeType, "application/msword"),
		strings.HasPrefix(mimeType, "application/vnd.openxmlformats-officedocument"):
		return true
	}

	return false
}

// Store writes uploaded files to a single flat directory under
// timestamped, collision-free names.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Store{dir: dir}, nil
}

func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	filename := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)

	dst, err := os.Create(filepath.Join(s.dir, filename))

	if err != nil {
		return "", err
	}

	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(filepath.Join(s.dir, filename))
		return "", err
	}

	return filename, nil
}

func (s *Store) Remove(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filename))

	// a row without a backing file is not a delete failure
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}

func (s *Store) PublicPath(filename string) string {
	return "/uploads/" + filename
}

func (s *Store) Dir() string {
	return s.dir
}
