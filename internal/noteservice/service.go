// Package noteservice implements the note operations shared by the HTTP API
// and the MCP server.
package noteservice

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/noted/internal/apperr"
	"github.com/starford/noted/internal/models"
	"github.com/starford/noted/internal/notestore"
)

// Event kinds passed to a Publisher.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Publisher receives a notification after every successful mutation.
type Publisher interface {
	PublishNoteEvent(kind, id string)
}

// NewNote is the input of Create. Both fields are required.
type NewNote struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks that title and content are present.
func (n NewNote) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Title, validation.Required),
		validation.Field(&n.Content, validation.Required),
	)
}

// Service wraps a notestore.Store.
type Service struct {
	store  notestore.Store
	events Publisher
}

// NewService creates a new note service. events may be nil.
func NewService(store notestore.Store, events Publisher) *Service {
	return &Service{store: store, events: events}
}

// Create validates n and inserts it, returning the new id.
func (s *Service) Create(ctx context.Context, n NewNote) (string, error) {
	if err := n.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	id, err := s.store.Insert(ctx, n.Title, n.Content)
	if err != nil {
		return "", err
	}
	s.publish(EventCreated, id)
	return id, nil
}

// List returns every note. The result is never nil.
func (s *Service) List(ctx context.Context) ([]models.Note, error) {
	notes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

// Delete removes the note with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(EventDeleted, id)
	return nil
}

// Update overwrites title and content without validating them.
func (s *Service) Update(ctx context.Context, id, title, content string) error {
	if err := s.store.Update(ctx, id, title, content); err != nil {
		return err
	}
	s.publish(EventUpdated, id)
	return nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishNoteEvent(kind, id)
	}
}
