package registry

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/ledgerdesk/ledgerdesk/internal/api"
	"github.com/ledgerdesk/ledgerdesk/internal/errors"
)

type fakeSearcher struct {
	calls   int
	matches []api.CompanyMatch
	err     error
}

func (f *fakeSearcher) SearchCompanies(ctx context.Context, query string) ([]api.CompanyMatch, error) {
	f.calls++
	return f.matches, f.err
}

func TestSearchCachesNormalizedQueries(t *testing.T) {
	fake := &fakeSearcher{matches: []api.CompanyMatch{{RegistryID: "r1", Name: "Acme BV"}}}
	l := NewLookup(fake)

	for _, q := range []string{"Acme", "acme", "  ACME  "} {
		matches, err := l.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", q, err)
		}
		if len(matches) != 1 || matches[0].RegistryID != "r1" {
			t.Fatalf("Search(%q) unexpected matches: %+v", q, matches)
		}
	}
	if fake.calls != 1 {
		t.Errorf("expected 1 upstream call for equivalent queries, got %d", fake.calls)
	}
}

func TestSearchEmptyQueryMakesNoCall(t *testing.T) {
	fake := &fakeSearcher{}
	l := NewLookup(fake)

	matches, err := l.Search(context.Background(), "   ")
	if err != nil || matches != nil {
		t.Errorf("blank query should be a silent no-op, got %v, %v", matches, err)
	}
	if fake.calls != 0 {
		t.Errorf("blank query must not reach the server")
	}
}

func TestSearchFailuresAreNotCached(t *testing.T) {
	fake := &fakeSearcher{err: stderrors.New("boom")}
	l := NewLookup(fake)

	if _, err := l.Search(context.Background(), "acme"); !errors.Is(err, errors.KindNetwork) {
		t.Fatalf("expected wrapped lookup failure, got %v", err)
	}

	fake.err = nil
	fake.matches = []api.CompanyMatch{{RegistryID: "r1"}}
	matches, err := l.Search(context.Background(), "acme")
	if err != nil || len(matches) != 1 {
		t.Fatalf("retry after failure should hit upstream again: %v, %v", matches, err)
	}
	if fake.calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", fake.calls)
	}
}
