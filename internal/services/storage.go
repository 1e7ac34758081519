package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itwoqa/bugtracker/pkg/response"
)

// Storage keeps uploaded screenshots on the local filesystem under a
// single flat directory, served statically at /uploads.
type Storage struct {
	dir string
}

func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the directory files are stored in.
func (s *Storage) Dir() string {
	return s.dir
}

// GenerateName produces a collision-free stored name keeping the
// original extension.
func (s *Storage) GenerateName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".png"
	}
	return uuid.New().String() + ext
}

// Save writes the file and returns the public URI clients embed in
// bug descriptions and screenshot lists.
func (s *Storage) Save(name string, r io.Reader) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", response.NewServerError("Failed to store file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", response.NewServerError("Failed to store file")
	}

	return URIFor(name), nil
}

// Read returns a stored file's contents.
func (s *Storage) Read(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, response.NewNotFound("File not found")
		}
		return nil, err
	}
	return data, nil
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *Storage) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns the names of all stored files.
func (s *Storage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// ModTime returns a stored file's last modification time.
func (s *Storage) ModTime(name string) (time.Time, error) {
	path, err := s.path(name)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// StorageStats summarizes the uploads directory.
type StorageStats struct {
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}

// Stats returns file count and total size of the uploads directory.
func (s *Storage) Stats() (*StorageStats, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	stats := &StorageStats{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Files++
		stats.TotalBytes += info.Size()
	}
	return stats, nil
}

// path resolves a stored name to a filesystem path, rejecting anything
// that would escape the uploads directory.
func (s *Storage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", response.NewBadRequest("Invalid file name")
	}
	return filepath.Join(s.dir, name), nil
}

// URIFor returns the public URI for a stored name.
func URIFor(name string) string {
	return "/uploads/" + name
}
