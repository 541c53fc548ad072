// Package metadata persists editorial image metadata keyed by public URL.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/database"
	"github.com/masgolf/gallery-go/internal/infrastructure/security"
)

// Repository provides access to the image_metadata table.
type Repository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewRepository creates a metadata repository.
func NewRepository(db *database.DB, logger *logging.ChanneledLogger) *Repository {
	return &Repository{db: db, logger: logger}
}

const selectColumns = `id, image_url, file_name, alt_text, title, description, keywords, created_at, updated_at`

func scanRecord(scanner interface{ Scan(...any) error }) (*assets.MetadataRecord, error) {
	var rec assets.MetadataRecord
	var keywords string
	err := scanner.Scan(&rec.ID, &rec.ImageURL, &rec.FileName, &rec.AltText,
		&rec.Title, &rec.Description, &keywords, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if keywords != "" {
		rec.Keywords = strings.Split(keywords, ",")
	}
	return &rec, nil
}

// FindByURL returns the record for one public URL, or nil when absent.
func (r *Repository) FindByURL(ctx context.Context, imageURL string) (*assets.MetadataRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM image_metadata WHERE image_url = ?`, selectColumns)
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, imageURL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata for %s: %w", imageURL, err)
	}
	return rec, nil
}

// FindByURLs returns records for a batch of public URLs keyed by URL.
func (r *Repository) FindByURLs(ctx context.Context, urls []string) (map[string]*assets.MetadataRecord, error) {
	result := make(map[string]*assets.MetadataRecord, len(urls))
	if len(urls) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(urls))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT %s FROM image_metadata WHERE image_url IN (%s)`, selectColumns, placeholders)

	args := make([]any, len(urls))
	for i, u := range urls {
		args[i] = u
	}

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to batch query metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[rec.ImageURL] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Database().Debug("Metadata batch lookup",
		"requested", len(urls), "found", len(result), "duration", time.Since(start))
	return result, nil
}

// FindByFileNames returns records keyed by stored file name, used as
// the fallback when URL shapes drifted between environments.
func (r *Repository) FindByFileNames(ctx context.Context, names []string) (map[string]*assets.MetadataRecord, error) {
	result := make(map[string]*assets.MetadataRecord, len(names))
	if len(names) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(`SELECT %s FROM image_metadata WHERE file_name IN (%s)`, selectColumns, placeholders)

	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata by file name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[rec.FileName] = rec
	}
	return result, rows.Err()
}

// SearchURLs returns the public URLs of records whose text fields
// contain the query, for metadata-aware gallery search.
func (r *Repository) SearchURLs(ctx context.Context, query string) ([]string, error) {
	like := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT image_url FROM image_metadata
		WHERE alt_text LIKE ? OR title LIKE ? OR description LIKE ? OR keywords LIKE ?`,
		like, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("failed to search metadata: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Upsert inserts or updates the record for rec.ImageURL.
func (r *Repository) Upsert(ctx context.Context, rec *assets.MetadataRecord) error {
	if rec.ID == "" {
		rec.ID = security.GenerateULID()
	}
	now := time.Now().UTC()
	rec.UpdatedAt = now
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO image_metadata (id, image_url, file_name, alt_text, title, description, keywords, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(image_url) DO UPDATE SET
			file_name = excluded.file_name,
			alt_text = excluded.alt_text,
			title = excluded.title,
			description = excluded.description,
			keywords = excluded.keywords,
			updated_at = excluded.updated_at`,
		rec.ID, rec.ImageURL, rec.FileName, rec.AltText, rec.Title, rec.Description,
		strings.Join(rec.Keywords, ","), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert metadata for %s: %w", rec.ImageURL, err)
	}

	r.logger.Content().Info("Metadata upserted", "imageUrl", rec.ImageURL)
	return nil
}
