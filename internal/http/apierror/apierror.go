// Package apierror maps document errors to HTTP responses.
package apierror

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/dossier/internal/document"
	"github.com/MrJamesThe3rd/dossier/internal/storage"
)

type Response struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

// Status returns the HTTP status and a stable error code for err.
func Status(err error) (int, string) {
	var (
		unknownTemplate *document.UnknownTemplateError
		unknownUpload   *document.UnknownUploadTypeError
		missingField    *document.MissingRequiredFieldError
		badFormat       *document.InvalidFileFormatError
		tooLarge        *document.FileTooLargeError
		validation      *document.ValidationError
		transition      *document.InvalidStateTransitionError
	)

	switch {
	case errors.As(err, &unknownTemplate):
		return http.StatusNotFound, "unknown_template"
	case errors.As(err, &unknownUpload):
		return http.StatusNotFound, "unknown_upload_type"
	case errors.Is(err, document.ErrNotFound), errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &missingField):
		return http.StatusUnprocessableEntity, "missing_required_field"
	case errors.As(err, &badFormat):
		return http.StatusUnsupportedMediaType, "invalid_file_format"
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.As(err, &transition):
		return http.StatusConflict, "invalid_state_transition"
	case errors.Is(err, document.ErrRegenerationDisabled):
		return http.StatusConflict, "regeneration_disabled"
	case errors.Is(err, document.ErrDeleteNotPermitted):
		return http.StatusForbidden, "delete_not_permitted"
	}

	return http.StatusInternalServerError, "internal"
}

// Write sends err as JSON. Server side failures are logged and their details withheld.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)

	resp := Response{Error: err.Error(), Code: code}

	var validation *document.ValidationError
	if errors.As(err, &validation) {
		resp.Field = validation.Field
		resp.Rule = validation.Rule
		resp.Error = validation.Message
	}

	var missingField *document.MissingRequiredFieldError
	if errors.As(err, &missingField) {
		resp.Field = missingField.Field
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)

		resp.Error = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// JSON encodes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
