// Package entities provides the read-only company/contact registry used for
// entity-based classification. Sources load the full list; the Refresher
// publishes immutable snapshots out-of-band so a classification call never
// blocks on a lookup.
package entities

import (
	"context"
	"strings"
	"time"
)

// Company is one known account in the registry.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Source loads the current company list from a backing store.
type Source interface {
	LookupCompanies(ctx context.Context) ([]Company, error)
}

// Snapshot is an immutable view of the registry taken at one point in time.
// Safe for concurrent reads; never mutated after construction.
type Snapshot struct {
	Companies []Company
	FetchedAt time.Time
}

// NewSnapshot copies companies into a fresh snapshot.
func NewSnapshot(companies []Company) *Snapshot {
	copied := make([]Company, len(companies))
	copy(copied, companies)
	return &Snapshot{Companies: copied, FetchedAt: time.Now().UTC()}
}

// minNameLen guards against matching noise like "AI" inside unrelated words.
const minNameLen = 3

// MatchCompany finds the longest company name contained in message
// (case-insensitive). Specificity is the share of the message the matched
// name covers, so "Acme" in "Acme next steps?" scores higher than in a
// paragraph-long request.
func (s *Snapshot) MatchCompany(message string) (Company, float64, bool) {
	if s == nil || message == "" {
		return Company{}, 0, false
	}

	lower := strings.ToLower(message)
	var best Company
	bestLen := 0

	for _, c := range s.Companies {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if len(name) < minNameLen {
			continue
		}
		if strings.Contains(lower, name) && len(name) > bestLen {
			best = c
			bestLen = len(name)
		}
	}

	if bestLen == 0 {
		return Company{}, 0, false
	}

	specificity := float64(bestLen) / float64(len(lower))
	if specificity > 1 {
		specificity = 1
	}
	return best, specificity, true
}

// FindByName returns the company whose name equals name (case-insensitive).
func (s *Snapshot) FindByName(name string) (Company, bool) {
	if s == nil {
		return Company{}, false
	}
	target := strings.ToLower(strings.TrimSpace(name))
	for _, c := range s.Companies {
		if strings.ToLower(strings.TrimSpace(c.Name)) == target {
			return c, true
		}
	}
	return Company{}, false
}

// StaticSource serves a fixed company list. Used in tests and as a seed
// source before the first refresh completes.
type StaticSource struct {
	companies []Company
}

func NewStaticSource(companies []Company) *StaticSource {
	return &StaticSource{companies: companies}
}

func (s *StaticSource) LookupCompanies(_ context.Context) ([]Company, error) {
	out := make([]Company, len(s.companies))
	copy(out, s.companies)
	return out, nil
}
