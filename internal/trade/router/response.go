package router

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/OpenNSW/landedcost/internal/auth"
	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/lookup"
	"github.com/OpenNSW/landedcost/internal/trade/model"
	"github.com/OpenNSW/landedcost/internal/trade/service"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the body of a 400 caused by invalid input.
type ValidationErrorResponse struct {
	Error  string                 `json:"error"`
	Fields []estimator.FieldError `json:"fields"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func writeValidationError(w http.ResponseWriter, ve *estimator.ValidationError) {
	writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Error: "validation_failed", Fields: ve.Fields})
}

// writeServiceError maps a service error to its status code. Unexpected errors are
// logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var ve *estimator.ValidationError
	switch {
	case errors.As(err, &ve):
		writeValidationError(w, ve)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "resource belongs to another user")
	case errors.Is(err, lookup.ErrUpstreamUnavailable):
		slog.ErrorContext(r.Context(), "upstream lookup failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "upstream_unavailable", "failed to "+action)
	default:
		slog.ErrorContext(r.Context(), "request failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

var registerTagNames sync.Once

// bindJSON decodes and validates the request body. Every failure is returned as a
// ValidationError keyed by the JSON field path.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := binding.JSON.Bind(r, dst)
	if err == nil {
		return nil
	}

	var (
		fieldErrs validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &fieldErrs):
		ve := &estimator.ValidationError{}
		for _, fe := range fieldErrs {
			ve.Add(fieldPath(fe.Namespace()), fieldMessage(fe))
		}
		return ve
	case errors.As(err, &typeErr):
		return estimator.NewValidationError(typeErr.Field, "must be of type "+typeErr.Type.String())
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return estimator.NewValidationError("body", "malformed JSON")
	case errors.Is(err, io.EOF):
		return estimator.NewValidationError("body", "is required")
	case errors.As(err, &maxErr):
		return estimator.NewValidationError("body", "is too large")
	default:
		return estimator.NewValidationError("body", err.Error())
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath drops the struct name validator puts in front of every namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "iso3166_1_alpha2":
		return "must be an ISO 3166-1 alpha-2 country code"
	case "uuid":
		return "must be a valid uuid"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

// parseID reads a uuid path parameter.
func parseID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, estimator.NewValidationError(name, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, estimator.NewValidationError(name, "must be a valid uuid")
	}
	return id, nil
}

// parseListFilter reads the offset and limit query parameters.
func parseListFilter(r *http.Request) (model.ListFilter, error) {
	var filter model.ListFilter
	ve := &estimator.ValidationError{}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			ve.Add("limit", "must be an integer")
		} else {
			filter.Limit = &limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			ve.Add("offset", "must be an integer")
		} else {
			filter.Offset = &offset
		}
	}
	return filter, ve.Err()
}

// currentUser returns the authenticated user id, writing a 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	authCtx := auth.GetAuthContext(r.Context())
	if authCtx == nil || authCtx.UserID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return "", false
	}
	return authCtx.UserID, true
}
