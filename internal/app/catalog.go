package app

import (
	"context"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

// CategoryCatalog lists quiz categories.
type CategoryCatalog struct {
	store DocumentStore
	log   *logger.Logger
}

func NewCategoryCatalog(store DocumentStore, log *logger.Logger) *CategoryCatalog {
	return &CategoryCatalog{store: store, log: log}
}

// ListCategories never fails: a store error or an empty collection yields the
// local fallback list.
func (c *CategoryCatalog) ListCategories(ctx context.Context) []domain.QuizCategory {
	var categories []domain.QuizCategory
	if err := c.store.Find(ctx, domain.CollectionQuizCategories, Query{}, &categories); err != nil {
		c.log.Warn("using fallback quiz categories", "error", err)
		return fallbackCategories()
	}
	if len(categories) == 0 {
		c.log.Debug("no quiz categories stored, using fallback")
		return fallbackCategories()
	}
	return categories
}
