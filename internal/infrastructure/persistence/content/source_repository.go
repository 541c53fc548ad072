// Package content persists site content sources scanned for image
// usage, plus the registered asset records.
package content

import (
	"context"
	"fmt"

	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/database"
)

// SourceItem is one piece of site content whose body may reference
// stored images.
type SourceItem struct {
	ID    string
	Title string
	Slug  string
	Body  string
}

// SourceRepository loads the content sources the usage matcher scans.
type SourceRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSourceRepository creates a source repository.
func NewSourceRepository(db *database.DB, logger *logging.ChanneledLogger) *SourceRepository {
	return &SourceRepository{db: db, logger: logger}
}

func (r *SourceRepository) queryItems(ctx context.Context, query string) ([]SourceItem, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SourceItem
	for rows.Next() {
		var item SourceItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Slug, &item.Body); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// BlogPosts returns all published blog posts.
func (r *SourceRepository) BlogPosts(ctx context.Context) ([]SourceItem, error) {
	items, err := r.queryItems(ctx,
		`SELECT id, title, slug, content FROM blog_posts WHERE published = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to load blog posts: %w", err)
	}
	return items, nil
}

// FunnelPages returns all funnel pages.
func (r *SourceRepository) FunnelPages(ctx context.Context) ([]SourceItem, error) {
	items, err := r.queryItems(ctx,
		`SELECT id, title, slug, content FROM funnel_pages`)
	if err != nil {
		return nil, fmt.Errorf("failed to load funnel pages: %w", err)
	}
	return items, nil
}

// CalendarEntries returns all calendar entries. The slug column is
// absent for calendar rows; the ID doubles as slug.
func (r *SourceRepository) CalendarEntries(ctx context.Context) ([]SourceItem, error) {
	items, err := r.queryItems(ctx,
		`SELECT id, title, id, body FROM calendar_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar entries: %w", err)
	}
	return items, nil
}
