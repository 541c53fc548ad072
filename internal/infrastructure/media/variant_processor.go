// Package media generates resized webp variants for registered images.
package media

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/masgolf/gallery-go/internal/infrastructure/observability/logging"
)

// VariantSize defines one generated rendition of an uploaded image.
type VariantSize struct {
	Name  string
	Width int
}

// DefaultVariantSizes are the renditions generated for every
// registered asset. Images narrower than a variant's width skip it.
var DefaultVariantSizes = []VariantSize{
	{Name: "thumbnail", Width: 150},
	{Name: "small", Width: 300},
	{Name: "medium", Width: 600},
	{Name: "large", Width: 1200},
}

const webpQuality = 85

// Variant is one encoded rendition ready for upload.
type Variant struct {
	Name   string
	Width  int
	Height int
	Data   []byte
}

// VariantProcessor decodes source images and produces webp renditions.
type VariantProcessor struct {
	sizes  []VariantSize
	logger *logging.ChanneledLogger
}

// NewVariantProcessor creates a processor with the default sizes.
func NewVariantProcessor(logger *logging.ChanneledLogger) *VariantProcessor {
	return &VariantProcessor{sizes: DefaultVariantSizes, logger: logger}
}

// Process decodes the source image and returns one webp variant per
// configured size no wider than the original.
func (p *VariantProcessor) Process(source []byte) ([]Variant, error) {
	img, format, err := image.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()

	var variants []Variant
	for _, size := range p.sizes {
		if size.Width > originalWidth {
			continue
		}

		resized := imaging.Resize(img, size.Width, 0, imaging.Lanczos)

		var buf bytes.Buffer
		if err := webp.Encode(&buf, resized, &webp.Options{Quality: webpQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode %s variant: %w", size.Name, err)
		}

		variants = append(variants, Variant{
			Name:   size.Name,
			Width:  size.Width,
			Height: resized.Bounds().Dy(),
			Data:   buf.Bytes(),
		})
	}

	p.logger.Content().Debug("Variants generated",
		"sourceFormat", format,
		"sourceWidth", originalWidth,
		"variants", len(variants))
	return variants, nil
}
