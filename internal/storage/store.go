// Package storage persists encrypted document blobs on disk, one directory
// per owner, uuid file names.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Save writes data under a fresh uuid name, keeping the original extension,
// and returns the relative path to persist on the document row.
func (fs *FileStore) Save(ownerID uint, originalName string, data []byte) (string, error) {
	dir := filepath.Join(fs.root, strconv.FormatUint(uint64(ownerID), 10))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create owner directory: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return path, nil
}

func (fs *FileStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (fs *FileStore) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
