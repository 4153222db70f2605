// Package notestore defines the note document store and its backends.
package notestore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/starford/noted/internal/apperr"
	"github.com/starford/noted/internal/models"
)

// Store is the interface for note persistence. Every method performs a single
// single-document operation.
type Store interface {
	// Insert stores a new note and returns the identifier assigned to it.
	Insert(ctx context.Context, title, content string) (string, error)
	// List returns every stored note in storage order.
	List(ctx context.Context) ([]models.Note, error)
	// Delete removes the note with the given id. apperr.ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
	// Update replaces title and content of the note with the given id.
	// apperr.ErrNotFound when nothing was modified, which includes writing identical values.
	Update(ctx context.Context, id, title, content string) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// ParseID converts the hex form of an ObjectID. Malformed ids wrap apperr.ErrInvalidID.
func ParseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w %q: %v", apperr.ErrInvalidID, id, err)
	}
	return oid, nil
}

// NewID returns a fresh ObjectID in hex form for backends that do not generate one.
func NewID() string {
	return bson.NewObjectID().Hex()
}
