package upload

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge indicates the uploaded file exceeds the configured limit.
	ErrTooLarge = errors.New("upload: file too large")
	// ErrUnsupportedType indicates the file is not a recognized image format.
	ErrUnsupportedType = errors.New("upload: unsupported file type")
)

// extensions by sniffed content type; formats the shelf renderer can display.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Store writes uploaded product images to a local media directory and hands
// back web paths under /media/ for serving.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the media directory if needed and returns a store over it.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload: media directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

// Save sniffs the content type, enforces the size limit, and writes the image
// under a fresh UUID filename. It returns the web path for the stored file.
func (s *Store) Save(r io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()

	// The limit counts the sniffed head plus the remainder of the stream.
	remaining := s.maxBytes - int64(len(head))
	if remaining < 0 {
		os.Remove(dst.Name())
		return "", ErrTooLarge
	}
	if _, err := dst.Write(head); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(r, remaining+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	if written > remaining {
		os.Remove(dst.Name())
		return "", ErrTooLarge
	}

	return "/media/" + name, nil
}

// Handler serves stored media files read-only.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix("/media/", http.FileServer(http.Dir(s.dir)))
}

// MaxBytes reports the configured per-file size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// ValidWebPath reports whether p looks like a path this store produced.
func ValidWebPath(p string) bool {
	if !strings.HasPrefix(p, "/media/") {
		return false
	}
	rest := strings.TrimPrefix(p, "/media/")
	return rest != "" && !strings.Contains(rest, "/") && !strings.Contains(rest, "..")
}
