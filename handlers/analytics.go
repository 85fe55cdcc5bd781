package handlers

import (
	"log"
	"net/http"
	"strconv"

	"texturelab/models"
	"texturelab/repository"
	"texturelab/services"
)

// AnalyticsHandler serves keyword effectiveness and library summary reads.
type AnalyticsHandler struct {
	Analytics *services.AnalyticsService
	Keywords  repository.KeywordRepositoryInterface
}

// GetKeywordStats lists per-keyword effectiveness. Optional query params:
// theme_id restricts to one theme, min_uses drops thin samples.
func (ah *AnalyticsHandler) GetKeywordStats(w http.ResponseWriter, r *http.Request) {
	var themeID *uint
	if raw := r.URL.Query().Get("theme_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_query", "theme_id must be a positive integer")
			return
		}
		id := uint(parsed)
		themeID = &id
	}

	minUses := 0
	if raw := r.URL.Query().Get("min_uses"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			WriteAPIError(w, http.StatusBadRequest, "invalid_query", "min_uses must be a non-negative integer")
			return
		}
		minUses = parsed
	}

	stats, err := ah.Analytics.KeywordStats(themeID, minUses)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (ah *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := ah.Analytics.Summary()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListKeywords lists every keyword ever extracted, with its category.
func (ah *AnalyticsHandler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := ah.Keywords.ListAll()
	if err != nil {
		log.Printf("Error listing keywords: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve keywords")
		return
	}
	if keywords == nil {
		keywords = []models.Keyword{}
	}
	writeJSON(w, http.StatusOK, keywords)
}
