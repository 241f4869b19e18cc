// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/evanschultz/kanboard/internal/domain"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	board common.BoardService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the board service.
func NewHandler(board common.BoardService) *Handler {
	return &Handler{board: board}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.board == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "board service is not configured",
		})
		return
	}

	path := normalizePath(r.URL.Path)
	switch path {
	case "board":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetBoard(w, r)
		return
	case "columns":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleAddColumn(w, r)
		return
	case "tasks":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleAddTask(w, r)
		return
	case "drag/start", "drag/over", "drag/end":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleDrag(w, r, strings.TrimPrefix(path, "drag/"))
		return
	}

	resource, id, ok := resolveResourceID(path)
	if !ok {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
		return
	}
	switch {
	case r.Method == http.MethodPatch && resource == "columns":
		h.handleRenameColumn(w, r, id)
	case r.Method == http.MethodPatch && resource == "tasks":
		h.handleEditTask(w, r, id)
	case r.Method == http.MethodDelete && resource == "columns":
		h.handleDelete(w, id, h.board.DeleteColumn(r.Context(), id))
	case r.Method == http.MethodDelete && resource == "tasks":
		h.handleDelete(w, id, h.board.DeleteTask(r.Context(), id))
	default:
		writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
	}
}

// handleGetBoard serves GET `/board`.
func (h *Handler) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := h.board.GetBoard(r.Context())
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// handleAddColumn serves POST `/columns`.
func (h *Handler) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	var req common.AddColumnRequest
	if err := decodeOptionalJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	column, err := h.board.AddColumn(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, column)
}

// handleAddTask serves POST `/tasks`.
func (h *Handler) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req common.AddTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.board.AddTask(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// handleRenameColumn serves PATCH `/columns/{id}`.
func (h *Handler) handleRenameColumn(w http.ResponseWriter, r *http.Request, id string) {
	var req common.RenameColumnRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.ID = id
	result, err := h.board.RenameColumn(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleEditTask serves PATCH `/tasks/{id}`.
func (h *Handler) handleEditTask(w http.ResponseWriter, r *http.Request, id string) {
	var req common.EditTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	req.ID = id
	result, err := h.board.EditTask(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDelete writes the outcome of one DELETE request.
func (h *Handler) handleDelete(w http.ResponseWriter, id string, err error) {
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// handleDrag serves POST `/drag/{start,over,end}`.
func (h *Handler) handleDrag(w http.ResponseWriter, r *http.Request, phase string) {
	if phase == "start" {
		var item domain.DragItem
		if err := decodeJSONBody(r.Context(), w, r, &item); err != nil {
			writeErrorFrom(w, err)
			return
		}
		overlay, err := h.board.DragStart(r.Context(), item)
		if err != nil {
			writeErrorFrom(w, err)
			return
		}
		writeJSON(w, http.StatusOK, overlay)
		return
	}

	var req common.DragRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	var (
		board common.BoardSnapshot
		err   error
	)
	if phase == "over" {
		board, err = h.board.DragOver(r.Context(), req)
	} else {
		board, err = h.board.DragEnd(r.Context(), req)
	}
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// resolveResourceID parses `{columns,tasks}/{id}`.
func resolveResourceID(path string) (string, string, bool) {
	resource, id, ok := strings.Cut(path, "/")
	if !ok || (resource != "columns" && resource != "tasks") {
		return "", "", false
	}
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return "", "", false
	}
	return resource, id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrStorage):
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "storage_unavailable",
			Message: err.Error(),
			Hint:    "The change is held in memory; retry once storage is writable.",
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}

// decodeOptionalJSONBody decodes one optional JSON body and ignores empty payloads.
func decodeOptionalJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(out)
	if err == nil {
		select {
		case <-ctx.Done():
			return fmt.Errorf("request canceled: %w", ctx.Err())
		default:
			return nil
		}
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
}
