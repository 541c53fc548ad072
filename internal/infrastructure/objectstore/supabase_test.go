package objectstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDecodesFoldersAndObjects(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody listRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"name": "campaigns", "id": null},
			{"name": "hero.png", "id": "3f1c", "created_at": "2026-07-01T10:00:00Z",
			 "metadata": {"size": 2048, "mimetype": "image/png"}}
		]`)
	}))
	defer server.Close()

	client := NewSupabaseClient(server.URL, "service-key", "blog-images")
	entries, err := client.List(context.Background(), "originals", ListOptions{Limit: 100, Offset: 200})
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/list/blog-images", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "originals", gotBody.Prefix)
	assert.Equal(t, 100, gotBody.Limit)
	assert.Equal(t, 200, gotBody.Offset)
	assert.Equal(t, "name", gotBody.SortBy.Column, "sort defaults to name ascending")

	require.Len(t, entries, 2)
	assert.Equal(t, KindFolder, entries[0].Kind)
	assert.Equal(t, "campaigns", entries[0].Name)
	assert.Equal(t, KindObject, entries[1].Kind)
	assert.Equal(t, "3f1c", entries[1].ID)
	assert.Equal(t, int64(2048), entries[1].Size)
	assert.Equal(t, 2026, entries[1].CreatedAt.Year())
}

func TestListReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bucket not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewSupabaseClient(server.URL, "service-key", "missing")
	_, err := client.List(context.Background(), "originals", ListOptions{Limit: 100})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestPublicURL(t *testing.T) {
	client := NewSupabaseClient("https://proj.supabase.co/", "key", "blog-images")

	url := client.PublicURL("/campaigns/2026-07/hero.png")
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/blog-images/campaigns/2026-07/hero.png", url)
}

func TestUploadSetsUpsertHeaders(t *testing.T) {
	var gotPath, gotUpsert, gotType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUpsert = r.Header.Get("x-upsert")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewSupabaseClient(server.URL, "service-key", "blog-images")
	err := client.Upload(context.Background(), "originals/uploads/img-1.webp", "image/webp", []byte("webpdata"))
	require.NoError(t, err)

	assert.Equal(t, "/storage/v1/object/blog-images/originals/uploads/img-1.webp", gotPath)
	assert.Equal(t, "true", gotUpsert)
	assert.Equal(t, "image/webp", gotType)
	assert.Equal(t, []byte("webpdata"), gotBody)
}
