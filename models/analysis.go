package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Clause is the atomic unit of per-category analysis: a candidate
// self-contained legal statement extracted from the document text.
// Attributes and Explanation hold model-produced JSON; when the model output
// could not be parsed they hold the raw text instead, and consumers must
// tolerate either shape.
type Clause struct {
	Text        string      `json:"text"`
	SubCategory string      `json:"subCategory"`
	Attributes  interface{} `json:"attributes"`
	Explanation interface{} `json:"explanation"`
}

// DateEvent is a dated event extracted from document text, used for
// reminders and calendar integration
type DateEvent struct {
	Date         string   `json:"date"`
	Context      string   `json:"context"`
	Description  string   `json:"description"`
	Location     string   `json:"location,omitempty"`
	Participants []string `json:"participants,omitempty"`
}

// JSONMap is a loosely-typed bag of named fields for model-produced JSON
type JSONMap map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m JSONMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = make(JSONMap)
		return nil
	}

	if len(bytes) == 0 {
		*m = make(JSONMap)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// DateEvents is a list of date events stored as JSONB
type DateEvents []DateEvent

// Value implements driver.Valuer for JSONB
func (d DateEvents) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB
func (d *DateEvents) Scan(value interface{}) error {
	if value == nil {
		*d = make(DateEvents, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*d = make(DateEvents, 0)
		return nil
	}

	if len(bytes) == 0 {
		*d = make(DateEvents, 0)
		return nil
	}

	return json.Unmarshal(bytes, d)
}

// AnalysisResult is the aggregate record produced once per document run.
// It is immutable after creation and consumed by the UI synthesizer and by
// persistence.
type AnalysisResult struct {
	Summary      string     `json:"summary"`
	JSONData     JSONMap    `json:"jsonData"`
	DocumentType string     `json:"documentType"`
	Category     Category   `json:"category"`
	Dates        DateEvents `json:"dates"`
}

// AnalysisRecord is the persisted form of an analysis result
type AnalysisRecord struct {
	ID           uuid.UUID  `json:"id"`
	DocumentID   uuid.UUID  `json:"document_id"`
	Summary      string     `json:"summary"`
	JSONData     JSONMap    `json:"json_data"`
	DocumentType string     `json:"document_type"`
	Category     Category   `json:"category"`
	Dates        DateEvents `json:"dates"`
	CreatedAt    time.Time  `json:"created_at"`
}
