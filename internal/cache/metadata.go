package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StrategyKeyPrefix namespaces fetch-strategy metadata keys.
const StrategyKeyPrefix = "cache.strategy."

// MetadataStore is the small key-to-JSON-blob store that fetch strategies
// persist their watermarks in. It survives process restarts independently
// of the main record store. Load returns nil, nil when the key is absent.
type MetadataStore interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Delete(key string) error
	DeleteAll() error
}

// FileMetadataStore keeps one JSON file per key inside dir, mirroring the
// snapshot-file layout of the rest of the cache directory.
type FileMetadataStore struct {
	dir string
}

func NewFileMetadataStore(dir string) *FileMetadataStore {
	return &FileMetadataStore{dir: dir}
}

func (s *FileMetadataStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileMetadataStore) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading metadata %q: %w", key, err)
	}
	return data, nil
}

func (s *FileMetadataStore) Save(key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("saving metadata %q: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("saving metadata %q: %w", key, err)
	}
	return nil
}

func (s *FileMetadataStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting metadata %q: %w", key, err)
	}
	return nil
}

// DeleteAll removes every strategy metadata file. Called on cache clear.
func (s *FileMetadataStore) DeleteAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clearing metadata: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), StrategyKeyPrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("clearing metadata: %w", err)
		}
	}
	return nil
}
