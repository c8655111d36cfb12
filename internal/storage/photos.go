package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is where stored photos are served from.
const URLPrefix = "/uploads/"

const defaultExt = "jpg"

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "heic": true,
}

// PhotoStore writes uploaded photos into one flat directory.
type PhotoStore struct {
	Dir string
}

// NewPhotoStore creates dir if needed.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &PhotoStore{Dir: dir}, nil
}

// FileName builds "<occurrenceID>_<random>.<ext>", taking ext from the
// uploaded name when it is a known image type and defaulting to jpg.
func FileName(occurrenceID, uploadedName string) string {
	return occurrenceID + "_" + uuid.NewString() + "." + extension(uploadedName)
}

func extension(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return defaultExt
	}
	ext := strings.ToLower(base[i+1:])
	if !imageExts[ext] {
		return defaultExt
	}
	return ext
}

// Save copies src to a new file for the occurrence and returns its public URL.
// A partially written file is removed on failure.
func (s *PhotoStore) Save(occurrenceID, uploadedName string, src io.Reader) (string, error) {
	name := FileName(occurrenceID, uploadedName)
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close photo: %w", err)
	}
	return URLPrefix + name, nil
}

// Remove deletes a stored photo by its public URL.
func (s *PhotoStore) Remove(url string) error {
	name := strings.TrimPrefix(url, URLPrefix)
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid photo url %q", url)
	}
	return os.Remove(filepath.Join(s.Dir, name))
}
