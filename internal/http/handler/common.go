package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/service"
	"go.uber.org/zap"
)

var validate = validator.New()

// maxBodyBytes caps request bodies; exported configurators are the largest payloads
const maxBodyBytes = 4 << 20

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errs[toJSONFieldPath(fe.Namespace())] = formatValidationError(fe)
		}
	}

	respondJSON(w, http.StatusBadRequest, domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: errs,
	})
}

// respondConstraintError reports a violated configurator or cart invariant
func respondConstraintError(w http.ResponseWriter, ce *domain.ConstraintError) {
	respondJSON(w, http.StatusUnprocessableEntity, domain.APIError{
		Type:       domain.ErrorTypeValidation,
		Title:      ce.Kind.String(),
		Status:     http.StatusUnprocessableEntity,
		Detail:     ce.Message,
		Code:       ce.Kind.Code(),
		Violations: []domain.Violation{ce.Violation()},
	})
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", toJSONFieldName(fe.Field()))
	case "min":
		return fmt.Sprintf("Must contain at least %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// toJSONFieldPath turns "CartSelection.Items[0].Quantity" into "items[0].quantity"
func toJSONFieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toJSONFieldName(p)
	}
	return strings.Join(parts, ".")
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return domain.ErrorTypeForbidden
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	default:
		return domain.ErrorTypeInternal
	}
}

// handleError maps service errors to responses. Unexpected errors are logged and hidden.
func handleError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	var ce *domain.ConstraintError
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &ce):
		respondConstraintError(w, ce)
	case errors.As(err, &nf):
		respondWithError(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, service.ErrSnapshotCorrupted):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("failed to "+action, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// decodeJSON reads a size-limited JSON body into target
func decodeJSON(r *http.Request, target interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseInt64Param reads a positive integer path parameter
func parseInt64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
