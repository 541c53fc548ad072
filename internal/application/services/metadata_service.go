package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/masgolf/gallery-go/internal/application/matching"
	"github.com/masgolf/gallery-go/internal/domain/entities/assets"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/metadata"
)

// MetadataService manages editorial metadata records and their quality
// scoring.
type MetadataService struct {
	repo   *metadata.Repository
	logger *logging.ChanneledLogger
}

// NewMetadataService creates the metadata service.
func NewMetadataService(repo *metadata.Repository, logger *logging.ChanneledLogger) *MetadataService {
	return &MetadataService{repo: repo, logger: logger}
}

// Get returns the record and quality score for one image URL. A
// missing record returns a nil record with a zero quality score.
func (s *MetadataService) Get(ctx context.Context, imageURL string) (*assets.MetadataRecord, assets.MetadataQuality, error) {
	rec, err := s.repo.FindByURL(ctx, imageURL)
	if err != nil {
		return nil, assets.MetadataQuality{}, err
	}
	return rec, assets.ScoreMetadata(rec), nil
}

// Save validates and upserts a metadata record keyed by its image URL.
func (s *MetadataService) Save(ctx context.Context, rec *assets.MetadataRecord) (assets.MetadataQuality, error) {
	if strings.TrimSpace(rec.ImageURL) == "" {
		return assets.MetadataQuality{}, fmt.Errorf("imageUrl is required")
	}
	if rec.FileName == "" {
		rec.FileName = matching.Basename(rec.ImageURL)
	}

	cleaned := rec.Keywords[:0]
	for _, kw := range rec.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	rec.Keywords = cleaned

	if err := s.repo.Upsert(ctx, rec); err != nil {
		return assets.MetadataQuality{}, err
	}
	return assets.ScoreMetadata(rec), nil
}
