package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// FSStorage persists blobs on the local filesystem under a root directory and
// serves them from a configured public base URL.
type FSStorage struct {
	root    string
	baseURL string
}

var _ interfaces.ObjectStorage = (*FSStorage)(nil)

// NewFSStorage constructs a filesystem store rooted at dir.
func NewFSStorage(dir, baseURL string) (*FSStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("assets: storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create storage root: %w", err)
	}
	return &FSStorage{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put writes the blob, creating parent directories as needed.
func (f *FSStorage) Put(_ context.Context, req interfaces.PutObjectRequest) (*interfaces.StoredObject, error) {
	key, err := f.cleanKey(req.Key)
	if err != nil {
		return nil, err
	}
	if req.Content == nil {
		return nil, errors.New("assets: storage content is required")
	}

	target := filepath.Join(f.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("assets: create storage dir: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("assets: create %q: %w", key, err)
	}
	size, err := io.Copy(file, req.Content)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("assets: write %q: %w", key, err)
	}

	return &interfaces.StoredObject{
		Key:         key,
		URL:         f.baseURL + "/" + key,
		Size:        size,
		ContentType: req.ContentType,
	}, nil
}

// Delete removes the blob; missing keys are not an error.
func (f *FSStorage) Delete(_ context.Context, key string) error {
	cleaned, err := f.cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(f.root, filepath.FromSlash(cleaned)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("assets: delete %q: %w", cleaned, err)
	}
	return nil
}

// List walks the stored files under the prefix.
func (f *FSStorage) List(_ context.Context, prefix string) ([]*interfaces.StoredObject, error) {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	out := make([]*interfaces.StoredObject, 0)

	err := filepath.Walk(f.root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		out = append(out, &interfaces.StoredObject{
			Key:  key,
			URL:  f.baseURL + "/" + key,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assets: list storage: %w", err)
	}
	return out, nil
}

// cleanKey rejects traversal outside the storage root.
func (f *FSStorage) cleanKey(key string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("assets: storage key is required")
	}
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, "/../") {
		return "", fmt.Errorf("assets: storage key %q is invalid", key)
	}
	return cleaned, nil
}
