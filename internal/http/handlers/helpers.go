package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"shipment-console/internal/apperr"
	"shipment-console/internal/domain"
	mw "shipment-console/internal/http/middleware"
	"shipment-console/internal/logx"
)

const bodyLimit = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func writeJSON(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil && logger != nil {
		logger.Error("json encode error",
			logx.String("request_id", reqID(r.Context())),
			logx.Err(err),
		)
	}
}

type errResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeError(logger logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(logger, w, r, status, errResponse{Error: msg})
}

// writeAppError maps a classified error onto its HTTP status. Unclassified
// errors become 500 and are logged.
func writeAppError(logger logx.Logger, w http.ResponseWriter, r *http.Request, err error) {
	meta := apperr.MetadataFor(err)
	resp := errResponse{Error: apperr.PublicMessage(err)}
	if ae, ok := apperr.As(err); ok {
		resp.Reason = ae.Reason()
	}
	if logger != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed",
			logx.String("request_id", reqID(r.Context())),
			logx.String("path", r.URL.Path),
			logx.Int("status", meta.HTTPStatus),
			logx.Err(err),
		)
	}
	if meta.Retryable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(logger, w, r, meta.HTTPStatus, resp)
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON[T any](logger logx.Logger, w http.ResponseWriter, r *http.Request, dst *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(logger, w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(logger, w, r, http.StatusBadRequest, "invalid json")
		return false
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		writeError(logger, w, r, http.StatusBadRequest, "invalid json: trailing data")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(logger, w, r, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "validation failed"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must have at least %s items", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s items", fe.Field(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not repeat", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// viewer returns the authenticated viewer or answers 401.
func viewer(logger logx.Logger, w http.ResponseWriter, r *http.Request) (domain.Viewer, bool) {
	v, ok := mw.ViewerFrom(r.Context())
	if !ok {
		writeError(logger, w, r, http.StatusUnauthorized, "unauthenticated")
		return domain.Viewer{}, false
	}
	return v, true
}
