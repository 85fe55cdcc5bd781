package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"texturelab/media"
)

func newAssetTestStore(t *testing.T) *media.LocalStorage {
	t.Helper()
	store, err := media.NewLocalStorage(t.TempDir(), map[media.AssetType]string{
		media.AssetTypeTexture:   "textures",
		media.AssetTypeThumbnail: "thumbnails",
	})
	if err != nil {
		t.Fatalf("NewLocalStorage error: %v", err)
	}
	return store
}

func TestAssetServerServesNestedTexture(t *testing.T) {
	store := newAssetTestStore(t)
	if _, err := store.Save(media.AssetTypeTexture, filepath.Join("theme_1", "gen_2"), "image.png", bytes.NewReader([]byte("png-data"))); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	handler := AssetServer(store, "textures", "/api/textures/")

	req := httptest.NewRequest(http.MethodGet, "/api/textures/theme_1/gen_2/image.png", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "png-data" {
		t.Errorf("body = %q", body)
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.HasPrefix(cc, "public, max-age=") {
		t.Errorf("Cache-Control = %q", cc)
	}
}

func TestAssetServerMissingAsset(t *testing.T) {
	handler := AssetServer(newAssetTestStore(t), "textures", "/api/textures/")

	req := httptest.NewRequest(http.MethodGet, "/api/textures/theme_9/gen_9/nope.png", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAssetServerRejectsTraversal(t *testing.T) {
	handler := AssetServer(newAssetTestStore(t), "textures", "/api/textures/")

	tests := []struct {
		path string
		want int
	}{
		{"/api/textures/../database/lab.db", http.StatusBadRequest},
		{"/api/textures/theme_1/../../escape.png", http.StatusBadRequest},
		{"/api/textures/", http.StatusBadRequest},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != tt.want {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}
