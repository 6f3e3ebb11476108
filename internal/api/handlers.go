package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
	"github.com/starford/inkwell/internal/postservice"
)

const maxBody = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgInternal))
		return
	}
	writeJSON(w, http.StatusOK, toResponses(recs))
}

// GetPost handles GET /api/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get", id, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req models.Fields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(msgInvalid))
		return
	}
	rec, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create", "", err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(rec))
}

// UpdatePost handles PUT /api/posts/{id}. Fields missing from the body are left unchanged.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	id := chi.URLParam(r, "id")
	var patch models.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(msgInvalid))
		return
	}
	rec, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, "update", id, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete", id, err, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// fail maps service errors to responses. badIDStatus is what a malformed id
// turns into for this route.
func (h *Handler) fail(w http.ResponseWriter, op, id string, err error, badIDStatus int) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(msgInvalid))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(msgNotFound))
	case errors.Is(err, apperr.ErrInvalidID):
		if badIDStatus == http.StatusNotFound {
			writeJSON(w, http.StatusNotFound, errorBody(msgNotFound))
		} else {
			writeJSON(w, http.StatusBadRequest, errorBody(msgInvalid))
		}
	default:
		slog.Error(op+" post failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(msgInternal))
	}
}
