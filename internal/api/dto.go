package api

import "github.com/starford/noted/internal/models"

// NoteRequest is the request body for creating or editing a note.
type NoteRequest struct {
	Title   string `json:"title" example:"Groceries"`
	Content string `json:"content" example:"milk, eggs"`
}

// CreateNoteResponse is returned after a note is saved.
type CreateNoteResponse struct {
	Message string `json:"message" example:"Note saved"`
	ID      string `json:"id" example:"65f0c0ffee0000000000abcd"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message" example:"Note deleted"`
}

// ErrorResponse carries a human-readable error.
type ErrorResponse struct {
	Error string `json:"error" example:"Note not found"`
}

// StatusResponse is returned by the liveness and readiness probes.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Note is a single item of the list response.
type Note = models.Note
