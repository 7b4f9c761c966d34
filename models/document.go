package models

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded legal document
type Document struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chunk is a bounded-size, overlapping slice of a document's extracted text.
// Chunks exist only for the duration of one analysis run.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}
