package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseClient talks to a Supabase-compatible storage REST endpoint.
type SupabaseClient struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewSupabaseClient creates a storage client for the given bucket.
func NewSupabaseClient(baseURL, serviceKey, bucket string) *SupabaseClient {
	return &SupabaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	SortBy SortBy `json:"sortBy"`
}

type listEntry struct {
	Name      string     `json:"name"`
	ID        *string    `json:"id"`
	UpdatedAt *time.Time `json:"updated_at"`
	CreatedAt *time.Time `json:"created_at"`
	Metadata  *struct {
		Size     int64  `json:"size"`
		MimeType string `json:"mimetype"`
	} `json:"metadata"`
}

// List fetches one page of the folder listing. Entries without an object
// id are folder placeholders in the storage API and are reported as
// KindFolder.
func (c *SupabaseClient) List(ctx context.Context, folder string, opts ListOptions) ([]Entry, error) {
	reqBody := listRequest{
		Prefix: folder,
		Limit:  opts.Limit,
		Offset: opts.Offset,
		SortBy: opts.SortBy,
	}
	if reqBody.SortBy.Column == "" {
		reqBody.SortBy = SortBy{Column: "name", Order: "asc"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list request: %w", err)
	}

	url := fmt.Sprintf("%s/storage/v1/object/list/%s", c.baseURL, c.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage list failed for %q: %w", folder, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("storage list failed for %q: status %d: %s", folder, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode list response for %q: %w", folder, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		e := Entry{Name: r.Name}
		if r.ID == nil || *r.ID == "" {
			e.Kind = KindFolder
		} else {
			e.Kind = KindObject
			e.ID = *r.ID
		}
		if r.CreatedAt != nil {
			e.CreatedAt = *r.CreatedAt
		}
		if r.UpdatedAt != nil {
			e.UpdatedAt = *r.UpdatedAt
		}
		if r.Metadata != nil {
			e.Size = r.Metadata.Size
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// PublicURL returns the public object URL for a bucket-relative path.
func (c *SupabaseClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, strings.TrimLeft(path, "/"))
}

// Upload stores body at the bucket-relative path, overwriting any
// existing object.
func (c *SupabaseClient) Upload(ctx context.Context, path, contentType string, body []byte) error {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, strings.TrimLeft(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload failed for %q: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("storage upload failed for %q: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
