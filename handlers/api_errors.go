package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"texturelab/apperrors"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// writeServiceError maps service-layer errors onto HTTP statuses. A lineage
// cycle means corrupted data, so it is reported loudly as a server error
// rather than blamed on the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		WriteAPIError(w, http.StatusBadRequest, "validation_error", err.Error())
	case apperrors.IsNotFound(err):
		WriteAPIError(w, http.StatusNotFound, "not_found", err.Error())
	case apperrors.IsCycle(err):
		log.Printf("Error: theme lineage cycle detected: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "lineage_cycle", err.Error())
	default:
		log.Printf("Error: unhandled service error: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// mapRecordNotFound lifts the gorm sentinel into the service error taxonomy
// for handlers that read straight from a repository.
func mapRecordNotFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound(entity, id)
	}
	return err
}

// parseUintParam parses a chi URL parameter as an unsigned integer ID.
func parseUintParam(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
