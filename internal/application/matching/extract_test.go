package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLRefs(t *testing.T) {
	html := `
		<div style="background-image: url('/images/bg-fairway.jpg')">
			<img src="/images/hero.png" alt="hero">
			<img src='/images/hero.png'>
			<section style="background: url(/images/texture.webp)"></section>
		</div>`

	refs := HTMLRefs(html)
	assert.Equal(t, []string{"/images/hero.png", "/images/bg-fairway.jpg", "/images/texture.webp"}, refs)
}

func TestMarkdownRefs(t *testing.T) {
	md := `
# June sale

![Driver hero](/images/driver-hero.png "the new driver")
Some text with ![inline](/images/inline.jpg) and raw html:
<img src="/images/html-embed.png">
![Driver hero again](/images/driver-hero.png)
`

	refs := MarkdownRefs(md)
	assert.Contains(t, refs, "/images/driver-hero.png")
	assert.Contains(t, refs, "/images/inline.jpg")
	assert.Contains(t, refs, "/images/html-embed.png")

	// Repeated references collapse to one.
	count := 0
	for _, r := range refs {
		if r == "/images/driver-hero.png" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCalendarRefs(t *testing.T) {
	body := `Fitting day! Banner: https://cdn.example.com/blog-images/events/fitting.png
	plus markup <img src="/images/event.png"> and a plain link https://example.com/page`

	refs := CalendarRefs(body)
	assert.Contains(t, refs, "https://cdn.example.com/blog-images/events/fitting.png")
	assert.Contains(t, refs, "/images/event.png")
	assert.NotContains(t, refs, "https://example.com/page")
}

func TestCalendarRefsJSONBody(t *testing.T) {
	body := `{"title":"Demo Day","imageUrl":"https://cdn.example.com/blog-images/events/flyer.jpg",` +
		`"gallery":[{"src":"/images/tee-box.png"},{"src":"/docs/schedule.pdf"}],"location":"range"}`

	refs := CalendarRefs(body)
	assert.Contains(t, refs, "https://cdn.example.com/blog-images/events/flyer.jpg")
	assert.Contains(t, refs, "/images/tee-box.png")
	assert.NotContains(t, refs, "/docs/schedule.pdf")
	assert.NotContains(t, refs, "range")
}

func TestCalendarRefsCompactJSONURL(t *testing.T) {
	// No whitespace around the URL at all.
	refs := CalendarRefs(`{"imageUrl":"https://cdn.example.com/blog-images/x.jpg"}`)
	assert.Equal(t, []string{"https://cdn.example.com/blog-images/x.jpg"}, refs)
}
