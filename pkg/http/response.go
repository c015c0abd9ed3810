package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "truerelief/pkg/errors"
)

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteError(w http.ResponseWriter, err error) error {
	return apperrors.WriteError(w, err)
}

// WriteSuccess writes data as-is with 200.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func WritePaginated(w http.ResponseWriter, data any, totalCount int64, page, pageSize, totalPages int) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

type BulkUpdateResponse struct {
	Success bool   `json:"success"`
	Updated int64  `json:"updated"`
	Message string `json:"message"`
}

// BulkUpdateMessage mirrors the admin action feedback, e.g.
// "3 appointments marked as Confirmed."
func BulkUpdateMessage(n int64, noun, label string) string {
	if n != 1 {
		noun += "s"
	}
	return fmt.Sprintf("%d %s marked as %s.", n, noun, label)
}
