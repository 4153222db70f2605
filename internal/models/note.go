// Package models defines the domain types for noted.
package models

// Note is a single stored note. ID is the hex form of the store-assigned ObjectID.
type Note struct {
	ID      string `json:"_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
