package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripUUIDPrefix(t *testing.T) {
	t.Run("strips canonical uuid prefix", func(t *testing.T) {
		got := StripUUIDPrefix("3f2b8c1a-9d4e-4b6f-8a2c-1e5d7f9b3a6c-driver-hero.png")
		assert.Equal(t, "driver-hero.png", got)
	})

	t.Run("keeps truncated uuid", func(t *testing.T) {
		name := "3f2b8c1a-9d4e-4b6f-8a2c-driver-hero.png"
		assert.Equal(t, name, StripUUIDPrefix(name))
	})

	t.Run("keeps non-hex prefix", func(t *testing.T) {
		name := "3f2b8c1z-9d4e-4b6f-8a2c-1e5d7f9b3a6c-driver-hero.png"
		assert.Equal(t, name, StripUUIDPrefix(name))
	})

	t.Run("keeps plain names", func(t *testing.T) {
		assert.Equal(t, "driver-hero.png", StripUUIDPrefix("driver-hero.png"))
	})
}

func TestNormalizeName(t *testing.T) {
	t.Run("lowercases and strips punctuation", func(t *testing.T) {
		assert.Equal(t, "summerdriversale2024", NormalizeName("Summer_Driver-Sale (2024).PNG"))
	})

	t.Run("keeps hangul", func(t *testing.T) {
		assert.Equal(t, "드라이버세일", NormalizeName("드라이버-세일.jpg"))
	})

	t.Run("strips uuid prefix first", func(t *testing.T) {
		assert.Equal(t, "driverhero",
			NormalizeName("3f2b8c1a-9d4e-4b6f-8a2c-1e5d7f9b3a6c-driver-hero.png"))
	})

	t.Run("idempotent", func(t *testing.T) {
		names := []string{
			"Summer_Driver-Sale (2024).PNG",
			"드라이버-세일.jpg",
			"3f2b8c1a-9d4e-4b6f-8a2c-1e5d7f9b3a6c-driver-hero.png",
			"plain",
		}
		for _, name := range names {
			once := NormalizeName(name)
			assert.Equal(t, once, NormalizeName(once), "normalizing %q twice changed the result", name)
		}
	})

	t.Run("only removes known image extensions", func(t *testing.T) {
		assert.Equal(t, "reporttxt", NormalizeName("report.txt"))
		assert.Equal(t, "banner", NormalizeName("banner.webp"))
	})
}

func TestIsImageName(t *testing.T) {
	assert.True(t, IsImageName("hero.JPG"))
	assert.True(t, IsImageName("banner.webp"))
	assert.True(t, IsImageName("logo.svg"))
	assert.False(t, IsImageName("notes.txt"))
	assert.False(t, IsImageName("archive.zip"))
	assert.False(t, IsImageName(".emptyFolderPlaceholder"))
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "hero.png", Basename("https://cdn.example.com/a/b/hero.png"))
	assert.Equal(t, "hero image.png", Basename("/images/hero%20image.png"))
	assert.Equal(t, "hero.png", Basename("campaigns/2024-06/hero.png/"))
}

func TestCampaignMonth(t *testing.T) {
	assert.Equal(t, "2024-06", CampaignMonth("originals/campaigns/2024-06/hero.png"))
	assert.Equal(t, "2024-06", CampaignMonth("campaigns/2024-06"))
	assert.Equal(t, "", CampaignMonth("originals/goods/drivers/hero.png"))
	assert.Equal(t, "", CampaignMonth("mycampaigns/2024-06/hero.png"))
}
