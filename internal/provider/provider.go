package provider

import (
	"sort"

	"github.com/daybook-app/daybook/internal/fetch"
)

type Metadata struct {
	ID          string
	Name        string
	Description string
}

// Settings is the per-provider slice of the application config.
type Settings struct {
	BaseURL string
	Token   string
	Timeout float64
}

// Provider declares the datasets one external source contributes: each
// dataset binds a record kind to the remote and the incremental-fetch
// strategy that keeps it fresh.
type Provider interface {
	Meta() Metadata
	Datasets(s Settings) []fetch.Dataset
}

var registry = map[string]Provider{}

func Register(p Provider) {
	registry[p.Meta().ID] = p
}

func Get(id string) (Provider, bool) {
	p, ok := registry[id]
	return p, ok
}

func All() map[string]Provider {
	result := make(map[string]Provider, len(registry))
	for k, v := range registry {
		result[k] = v
	}
	return result
}

func ListIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
