package models

import "time"

// Note is a user-owned text record. UserID is always taken from the
// authenticated principal, never from client input.
type Note struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Attachment links a note to a blob in object storage.
type Attachment struct {
	ID         int64     `json:"id"`
	NoteID     int64     `json:"noteId"`
	UserID     int64     `json:"-"`
	StorageKey string    `json:"key"`
	FileName   string    `json:"fileName"`
	CreatedAt  time.Time `json:"createdAt"`
}
