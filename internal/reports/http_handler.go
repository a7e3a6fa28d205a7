package reports

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/OpenNSW/landedcost/internal/auth"
	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/reports/storage"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// HandleCreateReport handles POST /api/analyses/{id}/report
func (h *HTTPHandler) HandleCreateReport(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.GetAuthContext(r.Context())
	if authCtx == nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	analysisID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, estimator.NewValidationError("id", "must be a valid uuid"))
		return
	}

	report, err := h.service.Generate(r.Context(), authCtx.UserID, analysisID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// HandleGetReport handles GET /api/reports/{key}
func (h *HTTPHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.GetAuthContext(r.Context())
	if authCtx == nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	key := r.PathValue("key")

	body, contentType, err := h.service.Open(r.Context(), authCtx.UserID, key)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+key+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(r.Context(), "failed to stream report", "key", key, "error", err)
	}
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ve *estimator.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation_failed", "fields": ve.Fields})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "report not found")
	case errors.Is(err, service.ErrForbidden):
		writeJSONError(w, http.StatusForbidden, "forbidden", "report belongs to another user")
	default:
		slog.ErrorContext(r.Context(), "report request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "report request failed")
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
