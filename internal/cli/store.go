package cli

import (
	"fmt"
	"os"

	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/records"
)

// openStore opens the on-disk record store. The returned cleanup closes
// the underlying database.
func openStore() (*cache.Store, func(), error) {
	if err := os.MkdirAll(config.CacheDir(), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating cache dir: %w", err)
	}
	backend, err := cache.NewSQLiteBackend(cache.DefaultSQLiteConfig(config.DatabaseFile()))
	if err != nil {
		return nil, nil, fmt.Errorf("opening record store: %w", err)
	}
	store := cache.NewStore(backend, records.NewRegistry())
	return store, func() { _ = backend.Close() }, nil
}

func openMetadata() cache.MetadataStore {
	return cache.NewFileMetadataStore(config.MetadataDir())
}
