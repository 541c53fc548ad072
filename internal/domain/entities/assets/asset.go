// Package assets contains the core entities for stored gallery images,
// their metadata records, and usage references discovered in site content.
package assets

import (
	"strings"
	"time"
)

// Asset is a single image object discovered in the object store.
type Asset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FolderPath string    `json:"folderPath"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	PublicURL  string    `json:"publicUrl"`
}

// StoragePath returns the bucket-relative path of the asset.
func (a *Asset) StoragePath() string {
	if a.FolderPath == "" {
		return a.Name
	}
	return a.FolderPath + "/" + a.Name
}

// MetadataRecord holds editorial metadata keyed by the asset's public URL.
type MetadataRecord struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"imageUrl"`
	FileName    string    `json:"fileName"`
	AltText     string    `json:"altText"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MetadataQuality scores how complete a metadata record is, 0-100.
type MetadataQuality struct {
	Score          int      `json:"score"`
	HasAltText     bool     `json:"has_alt_text"`
	HasTitle       bool     `json:"has_title"`
	HasDescription bool     `json:"has_description"`
	HasKeywords    bool     `json:"has_keywords"`
	Issues         []string `json:"issues,omitempty"`
}

// ScoreMetadata evaluates a metadata record. A nil record scores zero.
func ScoreMetadata(rec *MetadataRecord) MetadataQuality {
	q := MetadataQuality{}
	if rec == nil {
		q.Issues = append(q.Issues, "no metadata record")
		return q
	}
	if strings.TrimSpace(rec.AltText) != "" {
		q.HasAltText = true
		q.Score += 40
	} else {
		q.Issues = append(q.Issues, "missing alt text")
	}
	if strings.TrimSpace(rec.Title) != "" {
		q.HasTitle = true
		q.Score += 20
	} else {
		q.Issues = append(q.Issues, "missing title")
	}
	if strings.TrimSpace(rec.Description) != "" {
		q.HasDescription = true
		q.Score += 20
	} else {
		q.Issues = append(q.Issues, "missing description")
	}
	if len(rec.Keywords) > 0 {
		q.HasKeywords = true
		q.Score += 20
	} else {
		q.Issues = append(q.Issues, "missing keywords")
	}
	return q
}

// UsageReference records one place on the site where an asset is used.
type UsageReference struct {
	SourceType  string    `json:"sourceType"`
	SourceTitle string    `json:"sourceTitle"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	MatchedAt   time.Time `json:"matchedAt"`
}

// Usage source types.
const (
	SourceHTML          = "html"
	SourceBlogPost      = "blog_post"
	SourceFunnelPage    = "funnel_page"
	SourceCalendarEntry = "calendar_entry"
)

// AssetView is an asset as returned by the listing API: the stored
// object's facts plus its metadata fields flattened in, so consumers
// read one level of keys whether or not a metadata record exists.
type AssetView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Size        int64            `json:"size"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	URL         string           `json:"url"`
	FolderPath  string           `json:"folder_path"`
	AltText     string           `json:"alt_text"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Keywords    []string         `json:"keywords"`
	UsageCount  int              `json:"usage_count"`
	UsedIn      []UsageReference `json:"used_in"`
	HasMetadata bool             `json:"has_metadata"`
	Quality     *MetadataQuality `json:"metadata_quality"`
}

// ViewOf builds the flat listing view of an asset; metadata fields
// stay empty until a record is folded in.
func ViewOf(a Asset) AssetView {
	return AssetView{
		ID:         a.ID,
		Name:       a.Name,
		Size:       a.Size,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
		URL:        a.PublicURL,
		FolderPath: a.FolderPath,
		Keywords:   []string{},
		UsedIn:     []UsageReference{},
	}
}

// ApplyMetadata folds a metadata record's editorial fields into the
// view. A nil record leaves the view's fields empty.
func (v *AssetView) ApplyMetadata(rec *MetadataRecord) {
	if rec == nil {
		return
	}
	v.HasMetadata = true
	v.AltText = rec.AltText
	v.Title = rec.Title
	v.Description = rec.Description
	if len(rec.Keywords) > 0 {
		v.Keywords = rec.Keywords
	}
}

// Pagination describes the page window of a listing response.
// NextPage and PrevPage are null at the respective edges.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	PageSize    int  `json:"pageSize"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	NextPage    *int `json:"nextPage"`
	PrevPage    *int `json:"prevPage"`
}
