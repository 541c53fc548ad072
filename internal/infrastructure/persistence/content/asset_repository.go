package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/database"
)

// AssetRecord is one registered upload with its content hashes and
// generated variants.
type AssetRecord struct {
	ID          string            `json:"id"`
	FileName    string            `json:"fileName"`
	StoragePath string            `json:"storagePath"`
	PublicURL   string            `json:"publicUrl"`
	MD5Hash     string            `json:"md5Hash"`
	SHA256Hash  string            `json:"sha256Hash"`
	Size        int64             `json:"size"`
	ContentType string            `json:"contentType"`
	Variants    map[string]string `json:"variants"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// AssetRepository provides access to the image_assets table.
type AssetRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewAssetRepository creates an asset record repository.
func NewAssetRepository(db *database.DB, logger *logging.ChanneledLogger) *AssetRepository {
	return &AssetRepository{db: db, logger: logger}
}

// FindByMD5 returns the record with the given MD5 hash, or nil. Used
// for duplicate detection before uploading.
func (r *AssetRepository) FindByMD5(ctx context.Context, md5Hash string) (*AssetRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, file_name, storage_path, public_url, md5_hash, sha256_hash, size, content_type, variants, created_at
		FROM image_assets WHERE md5_hash = ? LIMIT 1`, md5Hash)

	var rec AssetRecord
	var variants string
	err := row.Scan(&rec.ID, &rec.FileName, &rec.StoragePath, &rec.PublicURL,
		&rec.MD5Hash, &rec.SHA256Hash, &rec.Size, &rec.ContentType, &variants, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset by md5: %w", err)
	}
	if err := json.Unmarshal([]byte(variants), &rec.Variants); err != nil {
		rec.Variants = nil
	}
	return &rec, nil
}

// Insert stores a new asset record.
func (r *AssetRepository) Insert(ctx context.Context, rec *AssetRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	variants, err := json.Marshal(rec.Variants)
	if err != nil {
		return fmt.Errorf("failed to encode variants: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO image_assets (id, file_name, storage_path, public_url, md5_hash, sha256_hash, size, content_type, variants, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FileName, rec.StoragePath, rec.PublicURL, rec.MD5Hash,
		rec.SHA256Hash, rec.Size, rec.ContentType, string(variants), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert asset record %s: %w", rec.ID, err)
	}

	r.logger.Content().Info("Asset record stored", "id", rec.ID, "path", rec.StoragePath)
	return nil
}
