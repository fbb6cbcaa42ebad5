package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllowedType(t *testing.T) {
	tests := []struct {
		name string
		file string
		mime string
		want bool
	}{
		{name: "jpeg", file: "photo.jpg", mime: "image/jpeg", want: true},
		{name: "png_upper_ext", file: "PHOTO.PNG", mime: "image/png", want: true},
		{name: "pdf", file: "report.pdf", mime: "application/pdf", want: true},
		{name: "docx", file: "cv.docx", mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", want: true},
		{name: "video", file: "clip.mp4", mime: "video/mp4", want: true},
		{name: "audio", file: "song.mp3", mime: "audio/mpeg", want: true},
		{name: "executable", file: "evil.exe", mime: "application/octet-stream", want: false},
		{name: "script_with_image_mime", file: "evil.sh", mime: "image/png", want: false},
		{name: "image_ext_wrong_mime", file: "fake.png", mime: "text/html", want: false},
		{name: "no_extension", file: "README", mime: "image/png", want: false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedType(tt.file, tt.mime); got != tt.want {
				t.Errorf("AllowedType(%q, %q) = %v, want %v", tt.file, tt.mime, got, tt.want)
			}
		})
	}
}

func TestStoreSaveAndRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	filename, err := s.Save(strings.NewReader("content"), "photo.JPG")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if !strings.HasSuffix(filename, ".jpg") {
		t.Errorf("stored name %q should keep a lowercased extension", filename)
	}
	if strings.Contains(filename, "photo") {
		t.Errorf("stored name %q must not leak the original name", filename)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), filename))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("got %q, want %q", data, "content")
	}

	if got := s.PublicPath(filename); got != "/uploads/"+filename {
		t.Errorf("public path %q", got)
	}

	if err := s.Remove(filename); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), filename)); !os.IsNotExist(err) {
		t.Error("file still on disk after remove")
	}

	// removing a missing file is not an error
	if err := s.Remove("gone.jpg"); err != nil {
		t.Errorf("remove of a missing file: %v", err)
	}
}

func TestStoreNamesDoNotCollide(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	seen := make(map[string]struct{})

	for i := 0; i < 20; i++ {
		name, err := s.Save(strings.NewReader("x"), "a.png")
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate stored name %q", name)
		}
		seen[name] = struct{}{}
	}
}
