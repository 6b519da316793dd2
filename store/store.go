// Package store implements the in-memory entity store behind the ad-platform
// tools: named collections of JSON-shaped records with filterable, sortable,
// cursor-paginated queries and an on-demand referential-integrity scan.
//
// Nothing here persists across restarts; the store is seeded at boot and
// mutated only through the collection CRUD operations.
package store

import (
	"fmt"
	"sync"
)

// Store owns every collection. Collections are created on first use and live
// for the life of the process. The Store itself is safe for concurrent use;
// record-level atomicity is handled by the per-collection locks.
type Store struct {
	mu          sync.RWMutex
	order       []string
	collections map[string]*Collection
}

// New creates an empty store.
func New() *Store {
	return &Store{
		collections: make(map[string]*Collection),
	}
}

// Collection returns the named collection, creating it if necessary.
func (s *Store) Collection(name string) *Collection {
	s.mu.RLock()
	c, ok := s.collections[name]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c
	}
	c = newCollection(name)
	s.collections[name] = c
	s.order = append(s.order, name)
	return c
}

// Names returns the collection names in creation order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Edge declares one foreign-key relationship for the integrity scan: every
// record in FromCollection whose FKField is set must point at an existing id
// in ToCollection.
type Edge struct {
	FromCollection string
	FKField        string
	ToCollection   string
}

// IntegrityReport is the outcome of a referential-integrity scan.
type IntegrityReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateReferentialIntegrity scans the declared edges and reports every
// dangling reference. This is an on-demand check rather than a write-time
// constraint: creates and updates stay cheap and touch a single collection,
// at the cost of allowing transient dangling references between the steps of
// a multi-call workflow.
func (s *Store) ValidateReferentialIntegrity(edges []Edge) IntegrityReport {
	report := IntegrityReport{Valid: true, Errors: []string{}}

	for _, edge := range edges {
		from := s.Collection(edge.FromCollection)
		to := s.Collection(edge.ToCollection)

		result := from.Find(nil, nil, nil)
		for _, rec := range result.Data {
			fk, present := rec[edge.FKField]
			if !present || fk == nil {
				// Unset foreign keys are advisory, not violations.
				continue
			}
			if to.Exists(fk) {
				continue
			}
			id, _ := NormalizeID(rec["id"])
			report.Errors = append(report.Errors, fmt.Sprintf(
				"%s/%s: %s %v has no matching record in %s",
				edge.FromCollection, id, edge.FKField, fk, edge.ToCollection,
			))
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}
