package receipt

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage keeps the images behind scanned baskets
type Storage interface {
	// Save writes data under name and returns the name to store on the basket
	Save(name string, data []byte) (string, error)

	// Get reads a previously saved image
	Get(name string) ([]byte, error)

	// Delete removes a saved image
	Delete(name string) error
}

// LocalStorage implements Storage on a local directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the directory if needed and returns a LocalStorage rooted there
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// path keeps names inside the base directory
func (l *LocalStorage) path(name string) string {
	return filepath.Join(l.basePath, filepath.Base(name))
}

// Save writes an image to the storage directory
func (l *LocalStorage) Save(name string, data []byte) (string, error) {
	if err := os.WriteFile(l.path(name), data, 0644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return filepath.Base(name), nil
}

// Get reads an image from the storage directory
func (l *LocalStorage) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(l.path(name))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// Delete removes an image from the storage directory
func (l *LocalStorage) Delete(name string) error {
	if err := os.Remove(l.path(name)); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}
