package store

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"
)

// MaxPageLimit is the hard server-side cap on page sizes. Callers asking for
// more get exactly this many records and must paginate for the rest.
const MaxPageLimit = 25

var (
	// ErrNotFound is returned when an id does not resolve to a record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned by Create when the id is already taken.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrMissingID is returned by Create when the record has no usable id.
	ErrMissingID = errors.New("record is missing an id")
)

// Record is a single entity: a JSON-shaped map with a required unique "id"
// field plus arbitrary domain fields.
type Record map[string]any

// Clone returns a shallow copy of the record. Field values are JSON scalars
// in practice, so a shallow copy is enough to isolate callers from the
// collection's internal state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// NormalizeID canonicalizes an id value. String ids pass through; numeric ids
// (including the float64 form produced by encoding/json) are rendered without
// a fractional part when whole, so 12345 and 12345.0 address the same record.
func NormalizeID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	case float64:
		if id == math.Trunc(id) {
			return strconv.FormatInt(int64(id), 10), true
		}
		return strconv.FormatFloat(id, 'g', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	}
	return "", false
}

// SortOrder is the direction of a sort spec.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort orders find results by one field. The sort is stable: records that
// compare equal (or lack the field) keep their insertion order.
type Sort struct {
	Field string
	Order SortOrder
}

// Page is an offset/limit window over sorted, filtered results. A zero or
// negative limit selects MaxPageLimit.
type Page struct {
	Offset int
	Limit  int
}

// PageResult is one window of find results plus enough bookkeeping for the
// caller to continue: HasMore is true exactly when offset+len(data) < total.
type PageResult struct {
	Data    []Record `json:"data"`
	Total   int      `json:"total"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
	HasMore bool     `json:"hasMore"`
}

// Collection is a named, ordered set of records of one logical type. All
// mutations take the collection lock, so interleaved requests never observe a
// half-applied create, update, or delete.
type Collection struct {
	name string

	mu    sync.RWMutex
	order []string          // ids in insertion order
	byID  map[string]Record // id -> record
}

func newCollection(name string) *Collection {
	return &Collection{
		name: name,
		byID: make(map[string]Record),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Create inserts a new record. The record must carry an id; an id already
// present in the collection fails with ErrDuplicateKey and leaves the
// existing record untouched.
func (c *Collection) Create(rec Record) error {
	id, ok := NormalizeID(rec["id"])
	if !ok {
		return fmt.Errorf("%w in collection %q", ErrMissingID, c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[id]; exists {
		return fmt.Errorf("%w: %q already exists in collection %q", ErrDuplicateKey, id, c.name)
	}

	c.byID[id] = rec.Clone()
	c.order = append(c.order, id)
	return nil
}

// Update merges partial into the record addressed by id and returns the
// updated record. Omitted fields keep their values; the "id" field cannot be
// changed. The merge is all-or-nothing: concurrent readers see either the old
// record or the fully merged one.
func (c *Collection) Update(id any, partial Record) (Record, error) {
	key, ok := NormalizeID(id)
	if !ok {
		return nil, fmt.Errorf("%w: invalid id %v in collection %q", ErrNotFound, id, c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.byID[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q in collection %q", ErrNotFound, key, c.name)
	}

	merged := existing.Clone()
	for k, v := range partial {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	c.byID[key] = merged

	return merged.Clone(), nil
}

// Delete removes the record addressed by id and reports whether anything was
// removed. Deleting an absent id is not an error; the second delete of the
// same id returns false.
func (c *Collection) Delete(id any) bool {
	key, ok := NormalizeID(id)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byID[key]; !exists {
		return false
	}
	delete(c.byID, key)
	for i, existing := range c.order {
		if existing == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// FindByID returns the record addressed by id.
func (c *Collection) FindByID(id any) (Record, bool) {
	key, ok := NormalizeID(id)
	if !ok {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.byID[key]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Exists reports whether a record with the given id is present.
func (c *Collection) Exists(id any) bool {
	_, ok := c.FindByID(id)
	return ok
}

// FindOne returns the first record in insertion order matching the filter.
func (c *Collection) FindOne(filter Filter) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		if filter.Match(c.byID[id]) {
			return c.byID[id].Clone(), true
		}
	}
	return nil, false
}

// Count returns the number of records matching the filter. A nil filter
// counts everything.
func (c *Collection) Count(filter Filter) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, id := range c.order {
		if filter.Match(c.byID[id]) {
			n++
		}
	}
	return n
}

// Find applies the filter, then the sort (insertion order when nil), then the
// page window. A nil page returns all matches in one result.
func (c *Collection) Find(filter Filter, sortBy *Sort, page *Page) PageResult {
	matched := c.snapshot(filter)

	if sortBy != nil && sortBy.Field != "" {
		applySort(matched, *sortBy)
	}

	total := len(matched)
	if page == nil {
		return PageResult{
			Data:    matched,
			Total:   total,
			Offset:  0,
			Limit:   total,
			HasMore: false,
		}
	}

	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	limit := page.Limit
	if limit <= 0 || limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return PageResult{
		Data:    matched[start:end],
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+(end-start) < total,
	}
}

// snapshot copies every matching record under the read lock so sorting and
// slicing happen on private data.
func (c *Collection) snapshot(filter Filter) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		rec := c.byID[id]
		if filter.Match(rec) {
			matched = append(matched, rec.Clone())
		}
	}
	return matched
}

func applySort(records []Record, s Sort) {
	desc := s.Order == SortDesc
	sort.SliceStable(records, func(i, j int) bool {
		vi, iok := records[i][s.Field]
		vj, jok := records[j][s.Field]
		// Records lacking the sort field go last regardless of direction.
		if !iok || !jok {
			return iok && !jok
		}
		cmp, ok := compareValues(vi, vj)
		if !ok {
			return false
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
