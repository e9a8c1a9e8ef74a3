package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotImage rejects files whose extension is not a known image type.
var ErrNotImage = fmt.Errorf("only image files are allowed")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Saver writes uploaded images into a public directory under random
// names, so a crafted filename can never escape or overwrite anything.
type Saver struct {
	dir      string
	maxBytes int64
}

func NewSaver(dir string, maxBytes int64) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &Saver{dir: dir, maxBytes: maxBytes}, nil
}

// Save stores the uploaded file and returns the generated filename.
func (s *Saver) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		return "", ErrNotImage
	}

	if header.Size > s.maxBytes {
		return "", fmt.Errorf("file exceeds the %d byte limit", s.maxBytes)
	}

	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, s.maxBytes)); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	return name, nil
}

// Remove deletes a previously saved file. Unknown names are ignored.
func (s *Saver) Remove(name string) {
	if name == "" || name != filepath.Base(name) {
		return
	}

	os.Remove(filepath.Join(s.dir, name))
}

// Dir exposes the storage directory for static file serving.
func (s *Saver) Dir() string {
	return s.dir
}
