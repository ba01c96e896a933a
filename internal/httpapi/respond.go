package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"shelf-go/internal/app"
	"shelf-go/internal/settings"
	"shelf-go/internal/shelf"
)

// maxBodyBytes bounds request bodies. Bookmark exports of a few thousand
// entries stay well below it.
const maxBodyBytes = 16 << 20

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, shelf.ErrBookmarkNotFound),
		errors.Is(err, shelf.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, shelf.ErrCategoryHasChildren),
		errors.Is(err, shelf.ErrLastCategory),
		errors.Is(err, app.ErrMoveCycle):
		return http.StatusConflict
	case errors.Is(err, shelf.ErrInvalidImport),
		errors.Is(err, settings.ErrInvalidSetting),
		errors.Is(err, app.ErrUnknownFormat),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	key := app.MessageKey(err)
	if key == "" {
		key = "alert.error"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{
		Error:   err.Error(),
		Code:    key,
		Message: s.app.T(key),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON request body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

// optional distinguishes an absent JSON field from an explicit null.
type optional[T any] struct {
	Set   bool
	Value *T
}

func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
