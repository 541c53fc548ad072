package services

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/masgolf/gallery-go/internal/application/matching"
	"github.com/masgolf/gallery-go/internal/infrastructure/caching/interfaces"
	"github.com/masgolf/gallery-go/internal/infrastructure/media"
	"github.com/masgolf/gallery-go/internal/infrastructure/objectstore"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
	"github.com/masgolf/gallery-go/internal/infrastructure/observability/performance"
	"github.com/masgolf/gallery-go/internal/infrastructure/persistence/content"
	"github.com/masgolf/gallery-go/internal/infrastructure/security"
)

const maxRegisterBytes = 20 << 20 // 20MB upload cap

// RegisterRequest describes an image to pull into managed storage.
type RegisterRequest struct {
	SourceURL string `json:"sourceUrl"`
	Folder    string `json:"folder"`
	FileName  string `json:"fileName"`
}

// RegisterResult reports the stored asset, or the existing record when
// the content was already registered.
type RegisterResult struct {
	Asset     *content.AssetRecord `json:"asset"`
	Duplicate bool                 `json:"duplicate"`
}

// RegisterService fetches external images, deduplicates them by
// content hash, stores the original plus webp variants, and records
// the registration.
type RegisterService struct {
	store       objectstore.Client
	records     *content.AssetRepository
	variants    *media.VariantProcessor
	cache       interfaces.AssetCache
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	httpClient  *http.Client
}

// NewRegisterService creates the registration service.
func NewRegisterService(store objectstore.Client, records *content.AssetRepository, variants *media.VariantProcessor, cache interfaces.AssetCache, logger *logging.ChanneledLogger, tracker *performance.Tracker) *RegisterService {
	return &RegisterService{
		store:       store,
		records:     records,
		variants:    variants,
		cache:       cache,
		logger:      logger,
		perfTracker: tracker,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Register pulls the source image into managed storage.
func (s *RegisterService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	marker := s.perfTracker.StartOperation("register:fetch")
	body, contentType, err := s.fetch(ctx, req.SourceURL)
	marker.SetError(err)
	s.perfTracker.CompleteOperation(marker)
	if err != nil {
		return nil, err
	}

	md5Sum := md5.Sum(body)
	sha256Sum := sha256.Sum256(body)
	md5Hash := hex.EncodeToString(md5Sum[:])

	dedupMarker := s.perfTracker.StartOperation("register:dedup")
	existing, err := s.records.FindByMD5(ctx, md5Hash)
	dedupMarker.SetError(err)
	s.perfTracker.CompleteOperation(dedupMarker)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Content().Info("Duplicate registration skipped",
			"sourceUrl", req.SourceURL, "existing", existing.StoragePath)
		return &RegisterResult{Asset: existing, Duplicate: true}, nil
	}

	originalName := req.FileName
	if originalName == "" {
		originalName = matching.Basename(req.SourceURL)
	}
	storedName := security.GenerateSEOFileName(originalName)

	folder := strings.Trim(req.Folder, "/")
	if folder == "" {
		folder = "originals/uploads"
	}
	storagePath := folder + "/" + storedName

	uploadMarker := s.perfTracker.StartOperation("register:upload")
	err = s.store.Upload(ctx, storagePath, contentType, body)
	uploadMarker.SetError(err)
	s.perfTracker.CompleteOperation(uploadMarker)
	if err != nil {
		return nil, fmt.Errorf("failed to upload original: %w", err)
	}

	variantPaths := s.uploadVariants(ctx, folder, storedName, body)

	rec := &content.AssetRecord{
		ID:          security.GenerateULID(),
		FileName:    storedName,
		StoragePath: storagePath,
		PublicURL:   s.store.PublicURL(storagePath),
		MD5Hash:     md5Hash,
		SHA256Hash:  hex.EncodeToString(sha256Sum[:]),
		Size:        int64(len(body)),
		ContentType: contentType,
		Variants:    variantPaths,
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, err
	}

	// New objects must show up on the next listing.
	s.cache.InvalidateAll()

	return &RegisterResult{Asset: rec}, nil
}

func (s *RegisterService) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	if !strings.HasPrefix(sourceURL, "http://") && !strings.HasPrefix(sourceURL, "https://") {
		return nil, "", fmt.Errorf("sourceUrl must be an http(s) URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch source image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("source image fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRegisterBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read source image: %w", err)
	}
	if len(body) > maxRegisterBytes {
		return nil, "", fmt.Errorf("source image exceeds %d byte limit", maxRegisterBytes)
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("source image is empty")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}

// uploadVariants generates and uploads webp renditions. Variant
// failures degrade registration rather than failing it.
func (s *RegisterService) uploadVariants(ctx context.Context, folder, storedName string, body []byte) map[string]string {
	marker := s.perfTracker.StartOperation("register:variants")
	defer s.perfTracker.CompleteOperation(marker)

	variants, err := s.variants.Process(body)
	if err != nil {
		marker.SetError(err)
		s.logger.Content().Warn("Variant generation failed, storing original only",
			"file", storedName, "error", err.Error())
		return map[string]string{}
	}

	baseName := storedName
	if idx := strings.LastIndex(baseName, "."); idx > 0 {
		baseName = baseName[:idx]
	}

	paths := make(map[string]string, len(variants))
	for _, v := range variants {
		variantPath := fmt.Sprintf("%s/variants/%s-%s.webp", folder, baseName, v.Name)
		if err := s.store.Upload(ctx, variantPath, "image/webp", v.Data); err != nil {
			marker.SetError(err)
			s.logger.Content().Warn("Variant upload failed",
				"variant", v.Name, "path", variantPath, "error", err.Error())
			continue
		}
		paths[v.Name] = s.store.PublicURL(variantPath)
	}
	marker.AddMetadata("variants", len(paths))
	return paths
}
