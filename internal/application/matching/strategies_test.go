package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExactPath(t *testing.T) {
	s := ExactPath{}

	assert.True(t, s.Matches(
		"https://cdn.example.com/storage/v1/object/public/blog-images/originals/goods/drivers/hero.png",
		"originals/goods/drivers/hero.png", "hero.png"))

	assert.True(t, s.Matches(
		"https://cdn.example.com/blog-images/originals/goods/drivers/hero%20shot.png",
		"originals/goods/drivers/hero shot.png", "hero shot.png"))

	assert.False(t, s.Matches(
		"https://cdn.example.com/blog-images/other/hero.png",
		"originals/goods/drivers/hero.png", "hero.png"))
}

func TestExactBasename(t *testing.T) {
	s := ExactBasename{}

	assert.True(t, s.Matches("/assets/hero.png", "anything/hero.png", "hero.png"))
	assert.False(t, s.Matches("/assets/hero-2.png", "anything/hero.png", "hero.png"))
}

func TestNormalizedName(t *testing.T) {
	s := NormalizedName{}

	// Re-uploaded copy gained a UUID prefix.
	assert.True(t, s.Matches(
		"/assets/3f2b8c1a-9d4e-4b6f-8a2c-1e5d7f9b3a6c-Driver-Hero.png",
		"originals/goods/drivers/driver_hero.png", "driver_hero.png"))

	assert.False(t, s.Matches("/assets/putter.png", "x/driver.png", "driver.png"))
}

func TestMonthScoped(t *testing.T) {
	s := MonthScoped{Inner: NormalizedName{}}

	t.Run("undated assets pass through", func(t *testing.T) {
		assert.True(t, s.Matches("/assets/hero.png", "originals/goods/hero.png", "hero.png"))
	})

	t.Run("same month matches", func(t *testing.T) {
		assert.True(t, s.Matches(
			"/campaigns/2024-06/sale-banner.png",
			"originals/campaigns/2024-06/sale_banner.png", "sale_banner.png"))
	})

	t.Run("identical banners in different months never cross-match", func(t *testing.T) {
		// June and July campaigns reuse the banner filename.
		juneRef := "/campaigns/2024-06/sale-banner.png"
		julyAsset := "originals/campaigns/2024-07/sale_banner.png"
		assert.False(t, s.Matches(juneRef, julyAsset, "sale_banner.png"))

		monthlessRef := "/assets/sale-banner.png"
		assert.False(t, s.Matches(monthlessRef, julyAsset, "sale_banner.png"))
	})
}

func TestDefaultChainOrdering(t *testing.T) {
	chain := DefaultChain()

	t.Run("exact path wins before fuzzy layers", func(t *testing.T) {
		name := chain.Match(
			"https://cdn.example.com/blog-images/originals/goods/drivers/hero.png",
			"originals/goods/drivers/hero.png", "hero.png")
		assert.Equal(t, "exact_path", name)
	})

	t.Run("falls back to basename", func(t *testing.T) {
		name := chain.Match("/local/hero.png", "originals/goods/drivers/hero.png", "hero.png")
		assert.Equal(t, "exact_basename", name)
	})

	t.Run("falls back to normalized name", func(t *testing.T) {
		name := chain.Match("/local/Hero (1).png", "originals/goods/drivers/hero_1.png", "hero_1.png")
		assert.Equal(t, "normalized_name", name)
	})

	t.Run("exact path ignores campaign months", func(t *testing.T) {
		// A full-path reference is unambiguous even across months.
		name := chain.Match(
			"https://cdn.example.com/blog-images/originals/campaigns/2024-07/sale.png",
			"originals/campaigns/2024-07/sale.png", "sale.png")
		assert.Equal(t, "exact_path", name)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Equal(t, "", chain.Match("/local/putter.png", "x/driver.png", "driver.png"))
	})

	t.Run("same filename in another campaign month never matches", func(t *testing.T) {
		// May and June campaigns reuse the photo filename; neither the
		// basename nor the normalized layer may bridge the months.
		name := chain.Match(
			"/campaigns/2025-05/photo.jpg",
			"originals/campaigns/2025-06/photo.jpg", "photo.jpg")
		assert.Equal(t, "", name)
	})

	t.Run("same month still matches by basename", func(t *testing.T) {
		name := chain.Match(
			"/campaigns/2025-06/photo.jpg",
			"originals/campaigns/2025-06/photo.jpg", "photo.jpg")
		assert.Equal(t, "exact_basename", name)
	})
}
