// Package covers stores uploaded book cover images and validates them
// before they are accepted.
//
// The rest of the application only ever sees the URL a store returns;
// where the bytes live is this package's business.
package covers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store persists cover images and resolves them to servable URLs.
type Store interface {
	// Save writes the image bytes and returns the URL to reference them by.
	Save(ctx context.Context, ext string, content io.Reader) (string, error)

	// Remove deletes a previously saved image by its URL. Unknown URLs
	// are not an error.
	Remove(ctx context.Context, url string) error
}

// DiskStore keeps cover images in a local directory, served by the
// router under /covers/.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the covers directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save writes the image under a random filename and returns its URL path.
func (s *DiskStore) Save(_ context.Context, ext string, content io.Reader) (string, error) {
	name, err := randomFilename(ext)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create cover file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write cover file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return "/covers/" + name, nil
}

// Remove deletes the file behind a URL returned by Save.
func (s *DiskStore) Remove(_ context.Context, url string) error {
	name := filepath.Base(url)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the directory covers are stored in, for static serving.
func (s *DiskStore) Dir() string {
	return s.dir
}

func randomFilename(ext string) (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "cover_" + hex.EncodeToString(bytes) + "." + ext, nil
}
