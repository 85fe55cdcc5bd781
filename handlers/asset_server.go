package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"texturelab/media"
)

// AssetServer creates a handler serving stored files from one subdirectory
// of the media store. Generated textures live under nested
// theme_<id>/gen_<id>/ folders, so the wildcard segment may contain
// slashes; thumbnails are flat.
//
//	r.Get("/api/textures/*", AssetServer(store, "textures", "/api/textures/"))
//	r.Get("/api/thumbnails/*", AssetServer(store, "thumbnails", "/api/thumbnails/"))
func AssetServer(store media.Store, subDir, routePrefix string) http.HandlerFunc {
	log.Printf("Serving assets for '%s*' from store subdirectory: %s", routePrefix, subDir)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)

		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		file, info, err := store.Get(path.Join(subDir, relativePath))
		if err != nil {
			if errors.Is(err, media.ErrInvalidPath) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				log.Printf("SECURITY: Attempted asset access outside storage root: Request='%s', Prefix='%s'", r.URL.Path, routePrefix)
				return
			}
			if errors.Is(err, os.ErrNotExist) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			log.Printf("Error opening asset for %s: %v", r.URL.Path, err)
			return
		}
		defer file.Close()

		// generated assets never change after being written
		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeContent(w, r, info.Name(), info.ModTime(), file)
	}
}
