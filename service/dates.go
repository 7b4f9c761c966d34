package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"lexlens-backend/llm"
	"lexlens-backend/models"
)

// ExtractDates pulls dated events out of document text for reminders and
// calendar integration. Extraction is independent of the category workflow
// and non-fatal: any failure yields an empty list.
func ExtractDates(ctx context.Context, client llm.Client, text string) models.DateEvents {
	prompt := fmt.Sprintf(`Extract every dated event from this legal document.
Return a JSON array of objects:
[{"date": "YYYY-MM-DD", "context": "...", "description": "...", "location": "...", "participants": ["..."]}]
Omit location and participants when the document does not state them.
Use ISO dates; skip events whose date cannot be resolved.
Return ONLY valid JSON, no markdown.

DOCUMENT:
%s`, text)

	parsed := llm.CleanJSON(client.Complete(ctx, prompt))
	arr, ok := parsed.([]interface{})
	if !ok {
		log.Printf("Warning: date extraction returned unparseable output, continuing without dates")
		return models.DateEvents{}
	}

	// Round-trip through JSON to map the loose values onto DateEvent
	encoded, err := json.Marshal(arr)
	if err != nil {
		return models.DateEvents{}
	}
	var events models.DateEvents
	if err := json.Unmarshal(encoded, &events); err != nil {
		log.Printf("Warning: date extraction produced malformed events: %v", err)
		return models.DateEvents{}
	}

	filtered := make(models.DateEvents, 0, len(events))
	for _, event := range events {
		if event.Date != "" {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
