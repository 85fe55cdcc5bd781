package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"texturelab/apperrors"
	"texturelab/models"
	"texturelab/services"
)

// GenerationHandler serves generation session creation and reads.
type GenerationHandler struct {
	Generations *services.GenerationService
}

// slotResultResponse is the wire form of one prompt slot outcome.
type slotResultResponse struct {
	Slot   int           `json:"slot"`
	Prompt string        `json:"prompt"`
	Status string        `json:"status"`
	Image  *models.Image `json:"image,omitempty"`
	Error  string        `json:"error,omitempty"`
	Kind   string        `json:"error_kind,omitempty"`
}

type generateResponse struct {
	Generation *models.Generation   `json:"generation"`
	Results    []slotResultResponse `json:"results"`
	Succeeded  int                  `json:"succeeded"`
	Failed     int                  `json:"failed"`
}

// Generate runs a full session: variation expansion, concurrent image
// generation and persistence. Individual slot failures are reported in the
// response body, not as an HTTP error; the session row exists either way.
func (gh *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThemeID        uint    `json:"theme_id"`
		VariationCount int     `json:"variation_count"`
		Size           string  `json:"size"`
		Quality        string  `json:"quality"`
		SessionName    *string `json:"session_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return
	}

	session, results, err := gh.Generations.Generate(r.Context(), req.ThemeID, req.VariationCount, services.SessionParams{
		Size:        req.Size,
		Quality:     req.Quality,
		SessionName: req.SessionName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := generateResponse{
		Generation: session,
		Results:    make([]slotResultResponse, len(results)),
	}
	for i, result := range results {
		slot := slotResultResponse{
			Slot:   i,
			Prompt: result.Prompt,
		}
		if result.Err != nil {
			slot.Status = "failed"
			slot.Error = result.Err.Error()
			var extErr *apperrors.ExternalServiceError
			if errors.As(result.Err, &extErr) {
				slot.Kind = extErr.Kind
			}
			resp.Failed++
		} else {
			slot.Status = "saved"
			slot.Image = result.Image
			resp.Succeeded++
		}
		resp.Results[i] = slot
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (gh *GenerationHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	generationID, err := parseUintParam(chi.URLParam(r, "generation_id"))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "Invalid generation ID format")
		return
	}

	session, err := gh.Generations.GetSession(generationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
