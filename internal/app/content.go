package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// ContentService serves the read-only catalogs: events, artefacts and
// learning material.
type ContentService struct {
	store DocumentStore
	log   *logger.Logger
}

func NewContentService(store DocumentStore, log *logger.Logger) *ContentService {
	return &ContentService{store: store, log: log}
}

// Events returns active events by date. month 1..12 keeps only events in that
// calendar month; 0 keeps all.
func (c *ContentService) Events(ctx context.Context, month int) ([]domain.Event, error) {
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", domain.ErrValidation)
	}
	var events []domain.Event
	err := c.store.Find(ctx, domain.CollectionEvents, Query{
		Filters: []Filter{Eq("isActive", true)},
		OrderBy: "date",
	}, &events)
	if err != nil {
		c.log.Warn("using fallback events", "error", err)
		events = fallbackEvents()
	} else if len(events) == 0 {
		events = fallbackEvents()
	}
	if month == 0 {
		return events, nil
	}

	filtered := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if e.Date.Month() == time.Month(month) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Artefacts filters the catalog by category ("" or "All" for every category)
// and a case-insensitive search on the name.
func (c *ContentService) Artefacts(ctx context.Context, category, search string) []domain.Artefact {
	var artefacts []domain.Artefact
	if err := c.store.Find(ctx, domain.CollectionArtefacts, Query{}, &artefacts); err != nil {
		c.log.Warn("using fallback artefacts", "error", err)
		artefacts = fallbackArtefacts()
	} else if len(artefacts) == 0 {
		artefacts = fallbackArtefacts()
	}

	category = strings.TrimSpace(category)
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Artefact, 0, len(artefacts))
	for _, a := range artefacts {
		if category != "" && !strings.EqualFold(category, "All") && a.Category != category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(a.Name), needle) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (c *ContentService) Artefact(ctx context.Context, id string) (domain.Artefact, error) {
	var artefact domain.Artefact
	if err := c.store.Get(ctx, domain.CollectionArtefacts, id, &artefact); err != nil {
		return domain.Artefact{}, fmt.Errorf("artefact %s: %w", id, err)
	}
	return artefact, nil
}

// LearnContent lists material in display order, optionally of one type.
func (c *ContentService) LearnContent(ctx context.Context, contentType string) ([]domain.LearnContent, error) {
	q := Query{OrderBy: "order"}
	var kind domain.LearnType
	if contentType != "" {
		kind = domain.LearnType(strings.ToLower(contentType))
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: unknown content type %q", domain.ErrValidation, contentType)
		}
		q.Filters = []Filter{Eq("type", string(kind))}
	}

	var content []domain.LearnContent
	if err := c.store.Find(ctx, domain.CollectionLearnContent, q, &content); err != nil {
		c.log.Warn("using fallback learn content", "error", err)
		content = make([]domain.LearnContent, 0)
		for _, item := range fallbackLearnContent() {
			if kind == "" || item.Type == kind {
				content = append(content, item)
			}
		}
	}
	if content == nil {
		content = []domain.LearnContent{}
	}
	return content, nil
}
