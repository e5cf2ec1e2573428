package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/brunovale/catalog-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type errorResponse struct {
	Error       string          `json:"error"`
	FieldErrors []fieldErrorDTO `json:"fieldErrors,omitempty"`
}

type fieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// handleError translates the domain error taxonomy to HTTP status codes.
// Anything outside the taxonomy is an internal error and gets logged.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		resp := errorResponse{Error: "validation failed"}
		for _, fe := range vErr.Errors {
			resp.FieldErrors = append(resp.FieldErrors, fieldErrorDTO{Field: fe.Field, Message: fe.Message})
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrDanglingReference):
		writeError(w, http.StatusUnprocessableEntity, "referenced resource does not exist")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "integrity violation")
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "invalid or expired token")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID extracts the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// pageRequestFromQuery reads the standard pagination query parameters.
// Values are not validated here; the domain normalization clamps them.
func pageRequestFromQuery(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return domain.PageRequest{
		Number:    number,
		Size:      size,
		SortBy:    q.Get("sort"),
		Direction: q.Get("direction"),
	}
}

// idsFromQuery parses a comma-separated id list query parameter. Blank
// segments are skipped; a malformed segment fails the whole parse.
func idsFromQuery(r *http.Request, name string) ([]int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.New("invalid " + name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// pageResponse is the JSON envelope for paginated listings.
type pageResponse[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
}

func toPageResponse[T, D any](page *domain.Page[T], mapFn func(T) D) pageResponse[D] {
	content := make([]D, 0, len(page.Content))
	for _, item := range page.Content {
		content = append(content, mapFn(item))
	}
	return pageResponse[D]{
		Content:       content,
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages(),
	}
}
