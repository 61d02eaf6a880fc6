package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// DocumentStore is an in-process app.DocumentStore. Documents are kept in
// their JSON form per collection, in insertion order, which is also the
// tiebreak when ordering.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	order []string
	docs  map[string]map[string]any
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{collections: make(map[string]*collection)}
}

func (s *DocumentStore) Get(_ context.Context, name, id string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return domain.ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	return remarshal(doc, out)
}

func (s *DocumentStore) Find(_ context.Context, name string, q app.Query, out any) error {
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]map[string]any, 0)
	if c, ok := s.collections[name]; ok {
		for _, id := range c.order {
			doc := c.docs[id]
			if matches(doc, filters) {
				matched = append(matched, doc)
			}
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(matched[i][q.OrderBy], matched[j][q.OrderBy])
			if q.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return remarshal(matched, out)
}

func (s *DocumentStore) Upsert(_ context.Context, name, id string, doc any) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrValidation)
	}
	var fields map[string]any
	if err := remarshal(doc, &fields); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	fields["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = fields
	return nil
}

func (s *DocumentStore) Increment(_ context.Context, name, id string, inc map[string]int, set map[string]any) error {
	var setFields map[string]any
	if len(set) > 0 {
		if err := remarshal(set, &setFields); err != nil {
			return fmt.Errorf("encode fields: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return domain.ErrNotFound
	}
	current, ok := c.docs[id]
	if !ok {
		return domain.ErrNotFound
	}

	updated := make(map[string]any, len(current)+len(setFields))
	for k, v := range current {
		updated[k] = v
	}
	for field, delta := range inc {
		n, _ := updated[field].(float64)
		updated[field] = n + float64(delta)
	}
	for k, v := range setFields {
		updated[k] = v
	}
	c.docs[id] = updated
	return nil
}

// Len reports how many documents a collection holds.
func (s *DocumentStore) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.order)
	}
	return 0
}

func normalizeFilters(filters []app.Filter) ([]app.Filter, error) {
	out := make([]app.Filter, len(filters))
	for i, f := range filters {
		var v any
		if err := remarshal(f.Value, &v); err != nil {
			return nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		out[i] = app.Filter{Field: f.Field, Value: v}
	}
	return out, nil
}

func matches(doc map[string]any, filters []app.Filter) bool {
	for _, f := range filters {
		if !reflect.DeepEqual(doc[f.Field], f.Value) {
			return false
		}
	}
	return true
}

// compareValues orders JSON values; RFC 3339 strings compare as instants.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case nil:
		if b == nil {
			return 0
		}
		return -1
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case string:
		if bv, ok := b.(string); ok {
			at, aerr := time.Parse(time.RFC3339Nano, av)
			bt, berr := time.Parse(time.RFC3339Nano, bv)
			if aerr == nil && berr == nil {
				return at.Compare(bt)
			}
			return strings.Compare(av, bv)
		}
	}
	if b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func remarshal(in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
