package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"texturelab/models"
	"texturelab/repository"
	"texturelab/services"
)

// ThemeHandler serves theme lifecycle and per-theme read endpoints.
type ThemeHandler struct {
	Themes      *services.ThemeService
	Analytics   *services.AnalyticsService
	Images      repository.ImageRepositoryInterface
	Generations repository.GenerationRepositoryInterface
}

func (th *ThemeHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		BasePrompt  string  `json:"base_prompt"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	theme, err := th.Themes.Create(req.Name, req.BasePrompt, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, theme)
}

func (th *ThemeHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := th.Themes.List()
	if err != nil {
		log.Printf("Error listing themes: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve themes")
		return
	}
	if themes == nil {
		themes = []models.Theme{}
	}
	writeJSON(w, http.StatusOK, themes)
}

func (th *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}

	theme, err := th.Themes.Get(themeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (th *ThemeHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}

	var update services.ThemeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}
	if update.Name == nil && update.Description == nil && update.BasePrompt == nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "No fields provided for update")
		return
	}

	theme, err := th.Themes.Update(themeID, update)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, theme)
}

func (th *ThemeHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}

	if err := th.Themes.Delete(themeID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// BranchTheme creates a child theme seeded from the parent's prompt. The
// child keeps its own copy; later edits to the parent do not propagate.
func (th *ThemeHandler) BranchTheme(w http.ResponseWriter, r *http.Request) {
	parentID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		BasePrompt  *string `json:"base_prompt"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	child, err := th.Themes.Branch(parentID, services.BranchOverrides{
		Name:        req.Name,
		BasePrompt:  req.BasePrompt,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

func (th *ThemeHandler) GetLineage(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}

	lineage, err := th.Themes.Lineage(themeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lineage)
}

func (th *ThemeHandler) GetThemeStats(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}

	stats, err := th.Analytics.ThemeStats(themeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (th *ThemeHandler) ListThemeImages(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}
	if _, err := th.Themes.Get(themeID); err != nil {
		writeServiceError(w, err)
		return
	}

	images, err := th.Images.ListByThemeID(themeID)
	if err != nil {
		log.Printf("Error listing images for theme %d: %v", themeID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve theme images")
		return
	}
	if images == nil {
		images = []models.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

// ListTopRatedImages serves the best rated images of a theme, highest
// rating first. Unrated images are excluded.
func (th *ThemeHandler) ListTopRatedImages(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}
	if _, err := th.Themes.Get(themeID); err != nil {
		writeServiceError(w, err)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteAPIError(w, http.StatusBadRequest, "invalid_query", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	images, err := th.Images.TopRatedByTheme(themeID, limit)
	if err != nil {
		log.Printf("Error listing top rated images for theme %d: %v", themeID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve top rated images")
		return
	}
	if images == nil {
		images = []models.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

func (th *ThemeHandler) ListThemeGenerations(w http.ResponseWriter, r *http.Request) {
	themeID, err := parseUintParam(chi.URLParam(r, "theme_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid theme ID format")
		return
	}
	if _, err := th.Themes.Get(themeID); err != nil {
		writeServiceError(w, err)
		return
	}

	generations, err := th.Generations.ListByThemeID(themeID)
	if err != nil {
		log.Printf("Error listing generations for theme %d: %v", themeID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve generation sessions")
		return
	}
	if generations == nil {
		generations = []models.Generation{}
	}
	writeJSON(w, http.StatusOK, generations)
}
