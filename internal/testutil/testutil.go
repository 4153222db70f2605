// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/starford/noted/internal/notestore"
)

// TestStore creates a SQLite note store in a temp directory that is closed on cleanup.
func TestStore(t *testing.T) *notestore.SQLite {
	t.Helper()
	store, err := notestore.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "noted-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })
	return store
}
