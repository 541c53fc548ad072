// Package objectstore abstracts the remote object storage service that
// holds the retailer's image assets.
package objectstore

import (
	"context"
	"time"
)

// EntryKind distinguishes folders from objects in a listing page.
type EntryKind int

const (
	KindFolder EntryKind = iota
	KindObject
)

// Entry is a single row returned by a folder listing.
type Entry struct {
	Kind      EntryKind
	Name      string
	ID        string
	Size      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortBy controls listing order.
type SortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// ListOptions selects a page of a folder listing.
type ListOptions struct {
	Limit  int
	Offset int
	SortBy SortBy
}

// Client is the minimal object store surface the gallery needs.
type Client interface {
	// List returns one page of entries directly under folder. Folder may
	// be empty for the bucket root. Entries are not recursive.
	List(ctx context.Context, folder string, opts ListOptions) ([]Entry, error)

	// PublicURL returns the publicly addressable URL for a stored object.
	PublicURL(path string) string

	// Upload stores body at path with the given content type,
	// overwriting any existing object.
	Upload(ctx context.Context, path, contentType string, body []byte) error
}
