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

// ImageHandler serves image reads and rating writes.
type ImageHandler struct {
	Images      repository.ImageRepositoryInterface
	Generations *services.GenerationService
}

func (ih *ImageHandler) ListRecentImages(w http.ResponseWriter, r *http.Request) {
	limit := 0 // repository applies its default
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteAPIError(w, http.StatusBadRequest, "invalid_query", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	images, err := ih.Images.ListRecent(limit)
	if err != nil {
		log.Printf("Error listing recent images: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve recent images")
		return
	}
	if images == nil {
		images = []models.Image{}
	}
	writeJSON(w, http.StatusOK, images)
}

func (ih *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := parseUintParam(chi.URLParam(r, "image_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid image ID format")
		return
	}

	image, err := ih.Images.GetByID(imageID)
	if err != nil {
		writeServiceError(w, mapRecordNotFound(err, "image", imageID))
		return
	}
	writeJSON(w, http.StatusOK, image)
}

// RateImage sets or overwrites the 1 to 5 rating on an image.
func (ih *ImageHandler) RateImage(w http.ResponseWriter, r *http.Request) {
	imageID, err := parseUintParam(chi.URLParam(r, "image_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid image ID format")
		return
	}

	var req struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	image, err := ih.Generations.Rate(imageID, req.Rating)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, image)
}
