// Package storage saves uploaded artifacts (student photos, certificate
// PDFs) on local disk under the configured upload directory. The database
// keeps only the relative reference returned by Save.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// FileStore writes uploads under Dir, one subdirectory per kind ("fotos",
// "certificados").
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

// Save streams the multipart file to disk under kind/ with a random hex
// name, keeping the original extension (lowercased). It returns the
// reference relative to the store's root, e.g. "fotos/a1b2c3.jpg".
func (s *FileStore) Save(kind string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := hex.EncodeToString(buf) + ext
	rel := filepath.Join(kind, name)

	dir := filepath.Join(s.Dir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	dst, err := os.Create(filepath.Join(s.Dir, rel))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// Remove deletes a previously saved upload by its reference. Callers use it
// to avoid orphaned files when the database write that should own the
// reference fails.
func (s *FileStore) Remove(ref string) error {
	return os.Remove(filepath.Join(s.Dir, filepath.FromSlash(ref)))
}
