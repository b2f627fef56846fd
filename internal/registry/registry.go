// Package registry resolves company names against the external business
// registry exposed through the server. Results are cached: the wizard
// re-runs the same lookup whenever the user walks back and forth through
// its steps, and registry data changes on the scale of days.
package registry

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
)

// Searcher is the slice of the API client the lookup needs.
type Searcher interface {
	SearchCompanies(ctx context.Context, query string) ([]api.CompanyMatch, error)
}

const cacheSize = 128

// Lookup is a cached company-registry search.
type Lookup struct {
	searcher Searcher
	cache    *lru.Cache[string, []api.CompanyMatch]
}

// NewLookup creates a Lookup backed by the given searcher.
func NewLookup(s Searcher) *Lookup {
	cache, _ := lru.New[string, []api.CompanyMatch](cacheSize)
	return &Lookup{searcher: s, cache: cache}
}

// Search returns registry matches for the query. Queries are normalized
// (trimmed, case-folded) before hitting the cache or the server. Failures
// are never cached.
func (l *Lookup) Search(ctx context.Context, query string) ([]api.CompanyMatch, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil, nil
	}

	if matches, ok := l.cache.Get(key); ok {
		logger.Component("registry").Debug("cache hit", "query", key, "matches", len(matches))
		return matches, nil
	}

	matches, err := l.searcher.SearchCompanies(ctx, key)
	if err != nil {
		return nil, errors.CompanyLookupFailed(query, err)
	}
	l.cache.Add(key, matches)
	return matches, nil
}
