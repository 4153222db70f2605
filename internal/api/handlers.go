package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/noted/internal/apperr"
	"github.com/starford/noted/internal/noteservice"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

var errTrailingData = errors.New("unexpected data after JSON object")

// decodeNote reads a NoteRequest. An empty body decodes to the zero value.
// Title and content must be JSON strings when present, and the body must hold
// exactly one JSON value.
func decodeNote(w http.ResponseWriter, r *http.Request) (NoteRequest, error) {
	var req NoteRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errTrailingData
	}
	return req, nil
}

// Health handles GET /.
//
//	@Summary	Check that the backend is up
//	@Tags		health
//	@Produce	plain
//	@Success	200	{string}	string	"Backend is working!"
//	@Router		/ [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "Backend is working!")
}

// Ready handles GET /health/ready by pinging the store.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		slog.Warn("readiness check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// CreateNote handles POST /add-note.
//
//	@Summary	Create a note
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		body	body		NoteRequest	true	"Note to create"
//	@Success	201		{object}	CreateNoteResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Router		/add-note [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	req, err := decodeNote(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	id, err := h.svc.Create(r.Context(), noteservice.NewNote{Title: req.Title, Content: req.Content})
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorBody("Title and content are required"))
			return
		}
		slog.Error("failed to save note", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to save note"))
		return
	}
	writeJSON(w, http.StatusCreated, CreateNoteResponse{Message: "Note saved", ID: id})
}

// ListNotes handles GET /notes.
//
//	@Summary	List every note
//	@Tags		notes
//	@Produce	json
//	@Success	200	{array}		Note
//	@Failure	500	{object}	ErrorResponse
//	@Router		/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("failed to fetch notes", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to fetch notes"))
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// DeleteNote handles DELETE /delete-note/{id}.
// A malformed id is reported as a storage failure (500), not a 400.
//
//	@Summary	Delete a note
//	@Tags		notes
//	@Produce	json
//	@Param		id	path		string	true	"Note id"
//	@Success	200	{object}	MessageResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/delete-note/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Note not found"))
			return
		}
		slog.Error("failed to delete note", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to delete note"))
		return
	}
	writeJSON(w, http.StatusOK, messageBody("Note deleted"))
}

// UpdateNote handles PUT /edit-note/{id}. Title and content are written as
// sent; an update that changes nothing answers 404 like a missing note.
//
//	@Summary	Replace title and content of a note
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Note id"
//	@Param		body	body		NoteRequest	true	"New values"
//	@Success	200		{object}	MessageResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Router		/edit-note/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := decodeNote(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	if err := h.svc.Update(r.Context(), id, req.Title, req.Content); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("Note not found or not updated"))
			return
		}
		slog.Error("failed to update note", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Failed to update note"))
		return
	}
	writeJSON(w, http.StatusOK, messageBody("Note updated"))
}
